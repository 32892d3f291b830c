package extract

import (
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/render"
)

func testPages() []render.Page {
	return []render.Page{
		{
			Number: 1,
			Lines:  []string{"1. What is 2+2?", "A) 3", "B) 4"},
			Images: []render.Image{
				{Page: 1, Index: 0, Format: "png", Box: render.Rect{W: 40, H: 20}},
				{Page: 1, Index: 1, Format: "png"},
			},
		},
		{
			Number: 2,
			Lines:  []string{"2. Name the organelle", "A) nucleus", "B) ribosome"},
		},
		{
			Number: 3,
			Lines:  []string{"Figure 2: mitochondria cross section"},
			Images: []render.Image{{Page: 3, Index: 0, Format: "jpeg"}},
		},
	}
}

func TestAttachImagesByRawLinePage(t *testing.T) {
	qs := []Question{
		unresolved("What is 2+2?", []string{"1. What is 2+2?", "A) 3", "B) 4"}, "3", "4"),
		unresolved("Name the organelle", []string{"2.  Name the  organelle", "A) nucleus"}, "nucleus", "ribosome"),
	}
	got := AttachImages(testPages(), qs)

	if got[0].Image == nil || got[0].Image.Page != 1 || got[0].Image.Index != 0 || got[0].Image.Box.W != 40 {
		t.Fatalf("expected first image of page 1, got %+v", got[0].Image)
	}
	if got[1].Image != nil {
		t.Fatalf("page 2 has no images, got %+v", got[1].Image)
	}
	if qs[0].Image != nil {
		t.Fatalf("input question was modified")
	}
}

func TestAttachImagesFigureCaptionFallback(t *testing.T) {
	qs := []Question{
		unresolved("Identify the mitochondria shown", []string{"7. Identify the mitochondria shown"}, "x", "y"),
		unresolved("Unrelated question text", []string{"8. Unrelated question text"}, "x", "y"),
	}
	got := AttachImages(testPages(), qs)
	if got[0].Image == nil || got[0].Image.Page != 3 || got[0].Image.Format != "jpeg" {
		t.Fatalf("expected page 3 figure, got %+v", got[0].Image)
	}
	if got[1].Image != nil {
		t.Fatalf("unexpected image %+v", got[1].Image)
	}
}

func TestTokensDropsShortWordsAndStopwords(t *testing.T) {
	got := tokens("Fig. 3 shows the Cell-wall of a plant")
	want := []string{"cell", "wall", "plant"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %q", got)
		}
	}
}
