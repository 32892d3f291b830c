package extract

import (
	"reflect"
	"testing"
)

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		name       string
		line       string
		hasOptions bool
		kind       Kind
		text       string
		options    []string
	}{
		{"numbered dot", "1. What is 2+2?", false, QuestionStart, "What is 2+2?", nil},
		{"numbered paren", "12) Pick one", true, QuestionStart, "Pick one", nil},
		{"q marker colon", "Q3: Name the planet", false, QuestionStart, "Name the planet", nil},
		{"question word dash", "Question 4 - Which metal", false, QuestionStart, "Which metal", nil},
		{"number only", "7.", false, QuestionStart, "", nil},
		{"decimal is not a number marker", "3.14 is close to pi", false, Continuation, "3.14 is close to pi", nil},
		{"standalone question mark", "Which of these is a mammal?", false, QuestionStart, "Which of these is a mammal?", nil},
		{"question mark with options open", "Which of these is a mammal?", true, Continuation, "Which of these is a mammal?", nil},
		{"short question mark line", "Why not?", false, Continuation, "Why not?", nil},
		{"option paren", "A) 3", false, OptionLine, "3", nil},
		{"option dot", "B. four", true, OptionLine, "four", nil},
		{"option bare upper", "C 5", true, OptionLine, "5", nil},
		{"option lower paren", "(d) six", true, OptionLine, "six", nil},
		{"option lower", "a) apple", true, OptionLine, "apple", nil},
		{"option with question mark", "A) Is it this one?", true, OptionLine, "Is it this one?", nil},
		{"question mark line beats option marker", "A) Is it this one?", false, QuestionStart, "A) Is it this one?", nil},
		{"article A question", "A train leaves at noon, when does it arrive?", false, QuestionStart, "A train leaves at noon, when does it arrive?", nil},
		{"article A with options open", "A train leaves at noon, when does it arrive?", true, OptionLine, "train leaves at noon, when does it arrive?", nil},
		{"short letter question stays option", "B) Why?", false, OptionLine, "Why?", nil},
		{"lower word is not an option", "a dog barks", true, Continuation, "a dog barks", nil},
		{"abbreviation is not a marker", "A) Washington D.C.", true, OptionLine, "Washington D.C.", nil},
		{"inline options", "A) 3 B) 4 C) 5", false, InlineOptions, "", []string{"3", "4", "5"}},
		{"inline parenthesized", "(a) red (b) green (c) (d) blue", true, InlineOptions, "", []string{"red", "green", "blue"}},
		{"inline with prefix", "Choose: A) x B) y", false, InlineOptions, "Choose:", []string{"x", "y"}},
		{"question with inline options", "5. Largest? (a) sun (b) moon", false, QuestionStart, "Largest?", []string{"sun", "moon"}},
		{"continuation", "of the following statements", false, Continuation, "of the following statements", nil},
		{"annotation only", "Answer: B", true, Continuation, "", nil},
		{"annotation stripped from option", "D) 6 Answer: B", true, OptionLine, "6", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.line, tc.hasOptions)
			if got.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", got.Kind, tc.kind)
			}
			if got.Text != tc.text {
				t.Fatalf("text = %q, want %q", got.Text, tc.text)
			}
			if len(tc.options) > 0 || len(got.Options) > 0 {
				if !reflect.DeepEqual(got.Options, tc.options) {
					t.Fatalf("options = %q, want %q", got.Options, tc.options)
				}
			}
		})
	}
}

func TestAnnotatedLetter(t *testing.T) {
	cases := map[string]string{
		"Answer: B":                "B",
		"Ans - c":                  "C",
		"Correct answer is (d)":    "D",
		"correct: a":               "A",
		"ANSWER = B.":              "B",
		"The answer is A":          "A",
		"Transaction: b":           "",
		"Answer: Both are correct": "",
	}
	for in, want := range cases {
		got, ok := AnnotatedLetter(in)
		if want == "" {
			if ok {
				t.Fatalf("%q: unexpected letter %q", in, got)
			}
			continue
		}
		if !ok || got != want {
			t.Fatalf("%q: got %q,%v want %q", in, got, ok, want)
		}
	}
}

func TestKindString(t *testing.T) {
	if QuestionStart.String() != "question_start" || Continuation.String() != "continuation" {
		t.Fatalf("unexpected kind names")
	}
}
