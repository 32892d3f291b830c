package extract

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
)

func rawLines(lines ...string) []RawLine {
	out := make([]RawLine, len(lines))
	for i, l := range lines {
		out[i] = RawLine{Text: l, Page: 1}
	}
	return out
}

func TestAssembleBasicQuestion(t *testing.T) {
	qs := Assemble(rawLines("1. What is 2+2?", "A) 3", "B) 4", "C) 5", "D) 6", "Answer: B"))
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}
	q := qs[0]
	if q.Text != "What is 2+2?" {
		t.Fatalf("text = %q", q.Text)
	}
	if !reflect.DeepEqual(q.Options, []string{"3", "4", "5", "6"}) {
		t.Fatalf("options = %q", q.Options)
	}
	if len(q.RawLines) != 6 {
		t.Fatalf("expected the annotation line to be kept as raw, got %d raw lines", len(q.RawLines))
	}
	if q.Provenance != ProvenanceUnresolved || q.Correct != nil {
		t.Fatalf("assembled question must be unresolved: %+v", q)
	}
}

func TestAssembleContinuations(t *testing.T) {
	qs := Assemble(rawLines(
		"header text before any question",
		"1.",
		"Which river is the",
		"longest in Africa",
		"A) The Nile",
		"river",
		"B) The Congo",
		"2. Pick a colour",
		"A) red B) blue",
	))
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(qs), qs)
	}
	if qs[0].Text != "Which river is the longest in Africa" {
		t.Fatalf("q1 text = %q", qs[0].Text)
	}
	if !reflect.DeepEqual(qs[0].Options, []string{"The Nile river", "The Congo"}) {
		t.Fatalf("q1 options = %q", qs[0].Options)
	}
	if !reflect.DeepEqual(qs[1].Options, []string{"red", "blue"}) {
		t.Fatalf("q2 options = %q", qs[1].Options)
	}
}

func TestAssembleDiscardsOrphansAndThinDrafts(t *testing.T) {
	qs := Assemble(rawLines(
		"A) orphan option before any question",
		"1. Only one option here",
		"A) lonely",
		"2. ",
		"A) empty text",
		"B) still empty",
		"3. Fine question",
		"A)",
		"B) yes",
		"C) no",
	))
	if len(qs) != 1 {
		t.Fatalf("expected only the valid draft, got %+v", qs)
	}
	if qs[0].Text != "Fine question" || !reflect.DeepEqual(qs[0].Options, []string{"yes", "no"}) {
		t.Fatalf("unexpected question: %+v", qs[0])
	}
}

func TestAssembleSingleLineQuestionWithOptions(t *testing.T) {
	qs := Assemble(rawLines("1. Largest planet? (a) Mars (b) Jupiter (c) Venus (d) Earth"))
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}
	if qs[0].Text != "Largest planet?" || len(qs[0].Options) != 4 {
		t.Fatalf("unexpected question: %+v", qs[0])
	}
}

func TestAssembleNoQuestionsReturnsEmpty(t *testing.T) {
	qs := Assemble(rawLines("Chapter one", "Some prose without structure.", "More prose."))
	if qs == nil || len(qs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", qs)
	}
	if qs := Assemble(nil); qs == nil || len(qs) != 0 {
		t.Fatalf("expected empty non-nil slice for no input")
	}
}

func TestTransitionIsPure(t *testing.T) {
	start := machine{state: accumulating, draft: Draft{Text: "Q", Options: []string{"a", "b"}}}
	next, closed := transition(start, Line{Kind: Continuation, Text: "more"}, RawLine{Text: "more"})
	if closed != nil {
		t.Fatalf("continuation must not close the draft")
	}
	if start.draft.Options[1] != "b" {
		t.Fatalf("input draft was mutated: %q", start.draft.Options)
	}
	if next.draft.Options[1] != "b more" {
		t.Fatalf("next draft = %q", next.draft.Options)
	}
	idleNext, _ := transition(machine{state: idle}, Line{Kind: OptionLine, Text: "x"}, RawLine{Text: "A) x"})
	if idleNext.state != idle || len(idleNext.draft.Options) != 0 {
		t.Fatalf("option in idle state must be discarded")
	}
}

func TestTransitionDoesNotShareSpareCapacity(t *testing.T) {
	opts := make([]string, 1, 4)
	opts[0] = "a"
	raw := make([]RawLine, 1, 4)
	raw[0] = RawLine{Text: "1. Q"}
	start := machine{state: accumulating, draft: Draft{Text: "Q", Options: opts, Raw: raw}}

	left, _ := transition(start, Line{Kind: OptionLine, Text: "left"}, RawLine{Text: "B) left"})
	right, _ := transition(start, Line{Kind: OptionLine, Text: "right"}, RawLine{Text: "B) right"})
	if left.draft.Options[1] != "left" || left.draft.Raw[1].Text != "B) left" {
		t.Fatalf("earlier branch overwritten: %q %v", left.draft.Options, left.draft.Raw)
	}
	if right.draft.Options[1] != "right" {
		t.Fatalf("right = %q", right.draft.Options)
	}

	cont, _ := transition(start, Line{Kind: Continuation, Text: "more"}, RawLine{Text: "more"})
	if start.draft.Options[0] != "a" || cont.draft.Options[0] != "a more" {
		t.Fatalf("continuation shared the option array: %q / %q", start.draft.Options, cont.draft.Options)
	}
}

func TestAssembleQuestionStartingWithArticle(t *testing.T) {
	qs := Assemble(rawLines("A train leaves at noon, when does it arrive?", "A) 1pm", "B) 2pm"))
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}
	if qs[0].Text != "A train leaves at noon, when does it arrive?" || !reflect.DeepEqual(qs[0].Options, []string{"1pm", "2pm"}) {
		t.Fatalf("question = %+v", qs[0])
	}
}

// Every emitted question has non-empty text and at least two options, for
// arbitrary line streams.
func TestAssembleRandomStreamsKeepInvariant(t *testing.T) {
	fragments := []string{
		"1. What?", "2) Why is that so?", "Q3: x", "A) yes", "B) no", "C", "(d) maybe",
		"A) 1 B) 2", "continuation text", "Which of these is right?", "Answer: A",
		"", "?", "D.", "a) lower", "7.", "figure 1 shows a cell", "3.14",
	}
	r := rand.New(rand.NewPCG(42, 7))
	for i := 0; i < 500; i++ {
		n := r.IntN(40)
		lines := make([]RawLine, n)
		for j := range lines {
			lines[j] = RawLine{Text: fragments[r.IntN(len(fragments))], Page: 1 + j/10}
		}
		for _, q := range Assemble(lines) {
			if strings.TrimSpace(q.Text) == "" {
				t.Fatalf("empty question text from %+v", lines)
			}
			if len(q.Options) < 2 {
				t.Fatalf("question with %d options from %+v", len(q.Options), lines)
			}
		}
	}
}

func FuzzAssemble(f *testing.F) {
	f.Add("1. What is 2+2?\nA) 3\nB) 4\nAnswer: B")
	f.Add("A) B) C)\n1.\n?")
	f.Fuzz(func(t *testing.T, text string) {
		var lines []RawLine
		for _, l := range strings.Split(text, "\n") {
			lines = append(lines, RawLine{Text: l, Page: 1})
		}
		for _, q := range Assemble(lines) {
			if len(q.Options) < 2 || strings.TrimSpace(q.Text) == "" {
				t.Fatalf("invalid question emitted: %+v", q)
			}
		}
	})
}
