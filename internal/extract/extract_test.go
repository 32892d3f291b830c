package extract

import (
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/render"
)

func TestRunPipeline(t *testing.T) {
	pages := []render.Page{
		{
			Number: 1,
			Lines: []string{
				"Biology quiz",
				"1. What is 2+2?",
				"A) 3", "B) 4", "C) 5", "D) 6",
				"Answer: B",
			},
			Images: []render.Image{{Page: 1, Index: 0, Format: "png"}},
		},
		{
			Number: 2,
			Lines: []string{
				"2. Which organelle makes ATP?",
				"(a) nucleus (b) mitochondria (c) ribosome",
			},
		},
	}

	qs := Run(pages, AnswerKey{2: "B"}, FirstOption{})
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].CorrectText() != "4" || qs[0].Provenance != ProvenanceConfirmed {
		t.Fatalf("q1 = %+v", qs[0])
	}
	if qs[0].Image == nil || qs[0].Image.Page != 1 {
		t.Fatalf("q1 image = %+v", qs[0].Image)
	}
	if qs[1].CorrectText() != "mitochondria" || qs[1].Provenance != ProvenanceConfirmed {
		t.Fatalf("q2 = %+v", qs[1])
	}
	if qs[1].Image != nil {
		t.Fatalf("q2 should have no image")
	}
}

func TestRunFallbackWhenNothingConfirms(t *testing.T) {
	pages := []render.Page{{Number: 1, Lines: []string{"1. Pick one", "A) x", "B) y"}}}
	qs := Run(pages, nil, FirstOption{})
	if len(qs) != 1 || qs[0].Provenance != ProvenanceFallback || qs[0].CorrectText() != "x" {
		t.Fatalf("unexpected result %+v", qs)
	}
}

func TestRunNoQuestions(t *testing.T) {
	qs := Run([]render.Page{{Number: 1, Lines: []string{"just prose"}}}, nil, FirstOption{})
	if qs == nil || len(qs) != 0 {
		t.Fatalf("expected empty slice, got %#v", qs)
	}
}

func TestLinesSkipsBlank(t *testing.T) {
	got := Lines([]render.Page{{Number: 4, Lines: []string{"  a  b ", "   ", "c"}}})
	if len(got) != 2 || got[0].Text != "a b" || got[1].Page != 4 {
		t.Fatalf("lines = %+v", got)
	}
}
