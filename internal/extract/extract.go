// Package extract turns rendered document pages into validated
// multiple-choice questions. Everything here is a pure batch computation:
// no I/O, no shared state, safe to run concurrently across documents.
package extract

import "github.com/mind-engage/mindengage-quiz/internal/render"

// Lines flattens pages into raw lines, preserving order.
func Lines(pages []render.Page) []RawLine {
	var out []RawLine
	for _, p := range pages {
		for _, l := range p.Lines {
			if n := render.NormalizeLine(l); n != "" {
				out = append(out, RawLine{Text: n, Page: p.Number})
			}
		}
	}
	return out
}

// Run executes classify → assemble → attach images → resolve answers.
// A document with no recognizable questions yields an empty slice.
func Run(pages []render.Page, key AnswerKey, policy FallbackPolicy) []Question {
	qs := Assemble(Lines(pages))
	qs = AttachImages(pages, qs)
	return Resolve(qs, key, policy)
}
