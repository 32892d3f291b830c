package extract

import (
	"slices"
	"strings"
)

type assemblyState int

const (
	idle assemblyState = iota
	accumulating
)

// Draft is a question being assembled. It is only visible inside Assemble.
type Draft struct {
	Text    string
	Options []string
	Raw     []RawLine
}

// clone copies the slices so appends never write into a shared array.
func (d Draft) clone() Draft {
	d.Options = slices.Clone(d.Options)
	d.Raw = slices.Clone(d.Raw)
	return d
}

type machine struct {
	state assemblyState
	draft Draft
}

// transition applies one classified line. It returns the next machine and,
// when the line closed the open draft, that draft.
func transition(m machine, l Line, raw RawLine) (machine, *Draft) {
	switch l.Kind {
	case QuestionStart:
		var closed *Draft
		if m.state == accumulating {
			d := m.draft
			closed = &d
		}
		next := machine{state: accumulating, draft: Draft{
			Text:    l.Text,
			Options: append([]string(nil), l.Options...),
			Raw:     []RawLine{raw},
		}}
		return next, closed

	case OptionLine, InlineOptions:
		if m.state == idle {
			return m, nil
		}
		d := m.draft.clone()
		d.Raw = append(d.Raw, raw)
		if l.Kind == OptionLine {
			d.Options = append(d.Options, l.Text)
		} else {
			if l.Text != "" && len(d.Options) == 0 {
				d.Text = joinText(d.Text, l.Text)
			}
			d.Options = append(d.Options, l.Options...)
		}
		return machine{state: accumulating, draft: d}, nil

	default:
		if m.state == idle {
			return m, nil
		}
		d := m.draft.clone()
		d.Raw = append(d.Raw, raw)
		switch {
		case l.Text == "":
			// annotation-only line, kept for answer resolution
		case len(d.Options) == 0:
			d.Text = joinText(d.Text, l.Text)
		default:
			last := len(d.Options) - 1
			d.Options[last] = joinText(d.Options[last], l.Text)
		}
		return machine{state: accumulating, draft: d}, nil
	}
}

func joinText(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// Assemble runs the classifier over lines and returns the drafts that pass
// the promotion rule: non-empty question text and at least two non-empty
// options. Returned questions are unresolved and carry no image.
func Assemble(lines []RawLine) []Question {
	out := []Question{}
	m := machine{state: idle}
	for _, raw := range lines {
		hasOptions := m.state == accumulating && len(m.draft.Options) > 0
		var closed *Draft
		m, closed = transition(m, Classify(raw.Text, hasOptions), raw)
		if closed != nil {
			out = promote(out, *closed)
		}
	}
	if m.state == accumulating {
		out = promote(out, m.draft)
	}
	return out
}

func promote(out []Question, d Draft) []Question {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return out
	}
	opts := make([]string, 0, len(d.Options))
	for _, o := range d.Options {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	if len(opts) < 2 {
		return out
	}
	return append(out, Question{
		Text:       text,
		Options:    opts,
		Provenance: ProvenanceUnresolved,
		RawLines:   append([]RawLine(nil), d.Raw...),
	})
}
