package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mind-engage/mindengage-quiz/internal/render"
)

var figureRe = regexp.MustCompile(`(?i)\bfig(?:ure)?\b\.?`)

// leading tokens of a figure caption compared against the question text
const figureLeadTokens = 6

var captionStopwords = map[string]struct{}{
	"fig": {}, "figure": {}, "the": {}, "and": {}, "for": {}, "with": {}, "shows": {}, "shown": {}, "below": {}, "above": {},
}

// AttachImages associates each question with a page image. A question whose
// raw lines occur on a page gets that page's first image; otherwise a
// figure caption sharing leading tokens with the question text selects the
// page. Inputs are not modified.
func AttachImages(pages []render.Page, qs []Question) []Question {
	pageOf := make(map[string]int)
	byNumber := make(map[int]render.Page, len(pages))
	for _, p := range pages {
		byNumber[p.Number] = p
		for _, l := range p.Lines {
			k := lineKey(l)
			if _, seen := pageOf[k]; !seen {
				pageOf[k] = p.Number
			}
		}
	}

	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
		if page, ok := rawLinePage(q, pageOf); ok {
			out[i].Image = firstImage(byNumber[page])
			continue
		}
		out[i].Image = figureImage(pages, q.Text)
	}
	return out
}

func rawLinePage(q Question, pageOf map[string]int) (int, bool) {
	for _, rl := range q.RawLines {
		if page, ok := pageOf[lineKey(rl.Text)]; ok {
			return page, true
		}
	}
	return 0, false
}

func figureImage(pages []render.Page, questionText string) *ImageRef {
	qTokens := make(map[string]struct{})
	for _, t := range tokens(questionText) {
		qTokens[t] = struct{}{}
	}
	for _, p := range pages {
		if len(p.Images) == 0 {
			continue
		}
		for _, l := range p.Lines {
			if !figureRe.MatchString(l) {
				continue
			}
			lead := tokens(l)
			if len(lead) > figureLeadTokens {
				lead = lead[:figureLeadTokens]
			}
			for _, t := range lead {
				if _, ok := qTokens[t]; ok {
					return firstImage(p)
				}
			}
		}
	}
	return nil
}

func firstImage(p render.Page) *ImageRef {
	if len(p.Images) == 0 {
		return nil
	}
	img := p.Images[0]
	return &ImageRef{Page: p.Number, Index: img.Index, Box: img.Box, Format: img.Format}
}

func lineKey(s string) string {
	return strings.ToLower(render.NormalizeLine(s))
}

// tokens lowercases s and returns words of three or more characters that are
// not caption stopwords.
func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 3 {
			continue
		}
		if _, stop := captionStopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
