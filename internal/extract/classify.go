package extract

import (
	"regexp"
	"strings"
)

// Kind tags a classified line.
type Kind int

const (
	Continuation Kind = iota
	QuestionStart
	OptionLine
	InlineOptions
)

func (k Kind) String() string {
	switch k {
	case QuestionStart:
		return "question_start"
	case OptionLine:
		return "option_line"
	case InlineOptions:
		return "inline_options"
	default:
		return "continuation"
	}
}

// Line is the result of classifying one text line.
//
//	QuestionStart: Text is the question text; Options holds options that
//	               followed it on the same line, if any.
//	OptionLine:    Text is the option text.
//	InlineOptions: Options are the split option texts; Text is any prefix
//	               before the first marker.
//	Continuation:  Text is the line without answer annotations.
type Line struct {
	Kind    Kind
	Text    string
	Options []string
}

var (
	// 1. / 1) / Q1: / Question 12 - ; the text must not start with a digit
	// so decimals like "3.14" are not numbered questions.
	questionStartRe = regexp.MustCompile(`^(?i:q(?:uestion)?\s*)?(\d{1,3})\s*[.):\-]\s*(\D.*)?$`)

	// A) x / A. x / A x / (a) x / a) x
	optionLineRe = regexp.MustCompile(`^(?:\(([A-Da-d])\)|([A-D])(?:\s*[.):\-]|\s|$)|([a-d])\s*[.):])\s*(.*)$`)

	// embedded markers require an explicit separator; "A." must be followed
	// by a space so "D.C." is not a marker
	inlineMarkerRe = regexp.MustCompile(`\([A-Da-d]\)|(?:^|\s)(?:[A-D]\)|[A-D][.:](?:\s|$)|[a-d]\))`)

	annotationRe = regexp.MustCompile(`(?i)\b(?:correct\s+answer|answer|ans|correct)\s*(?:is\s*[:\-=.)]?|[:\-=.)])\s*\(?([a-d])\b\)?`)
)

// Classify tags a single line. hasOptions reports whether the draft being
// assembled already collected options. Priority: QuestionStart, OptionLine,
// InlineOptions, Continuation.
func Classify(line string, hasOptions bool) Line {
	body := StripAnnotation(line)
	if body == "" {
		return Line{Kind: Continuation}
	}

	if m := questionStartRe.FindStringSubmatch(body); m != nil {
		return questionLine(strings.TrimSpace(m[2]))
	}
	if !hasOptions && strings.Contains(body, "?") && len(strings.Fields(body)) > 3 {
		return questionLine(body)
	}
	startsWithOption := optionLineRe.MatchString(body)

	markers := inlineMarkerRe.FindAllStringIndex(body, -1)
	if startsWithOption && len(markers) <= 1 {
		m := optionLineRe.FindStringSubmatch(body)
		return Line{Kind: OptionLine, Text: strings.TrimSpace(m[4])}
	}
	if len(markers) >= 2 {
		prefix, opts := splitInline(body, markers)
		return Line{Kind: InlineOptions, Text: prefix, Options: opts}
	}
	return Line{Kind: Continuation, Text: body}
}

func questionLine(text string) Line {
	markers := inlineMarkerRe.FindAllStringIndex(text, -1)
	if len(markers) < 2 {
		return Line{Kind: QuestionStart, Text: text}
	}
	prefix, opts := splitInline(text, markers)
	return Line{Kind: QuestionStart, Text: prefix, Options: opts}
}

// splitInline cuts text at marker positions, dropping empty segments.
func splitInline(text string, markers [][]int) (string, []string) {
	prefix := strings.TrimSpace(text[:markers[0][0]])
	opts := make([]string, 0, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		if seg := strings.TrimSpace(text[m[1]:end]); seg != "" {
			opts = append(opts, seg)
		}
	}
	return prefix, opts
}

// AnnotatedLetter finds an inline answer annotation such as "Answer: B"
// and returns its upper-case letter.
func AnnotatedLetter(text string) (string, bool) {
	m := annotationRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// StripAnnotation removes answer annotations from a line.
func StripAnnotation(line string) string {
	if !annotationRe.MatchString(line) {
		return strings.TrimSpace(line)
	}
	return strings.Join(strings.Fields(annotationRe.ReplaceAllString(line, " ")), " ")
}
