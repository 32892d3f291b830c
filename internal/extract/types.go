package extract

import (
	"errors"

	"github.com/mind-engage/mindengage-quiz/internal/render"
)

// ErrParseFailure marks a document the renderer could not read.
var ErrParseFailure = errors.New("document could not be parsed")

// Provenance records where a question's correct answer came from.
type Provenance string

const (
	ProvenanceConfirmed  Provenance = "confirmed"  // answer key or inline annotation
	ProvenanceFallback   Provenance = "fallback"   // picked by the fallback policy, unverified
	ProvenanceUnresolved Provenance = "unresolved" // no correct answer known
)

// RawLine is a normalized text line and the 1-based page it came from.
type RawLine struct {
	Text string `json:"text"`
	Page int    `json:"page"`
}

// ImageRef points at a page image attached to a question. Key is set once
// the raster has been written to blob storage.
type ImageRef struct {
	Page   int         `json:"page"`
	Index  int         `json:"index"`
	Box    render.Rect `json:"box"`
	Format string      `json:"format"`
	Key    string      `json:"key,omitempty"`
}

// Question is a validated multiple-choice question. Values returned by Run
// are never mutated; every stage works on copies.
type Question struct {
	Text       string     `json:"text"`
	Options    []string   `json:"options"`
	Correct    *string    `json:"correct"`
	Provenance Provenance `json:"provenance"`
	Image      *ImageRef  `json:"image,omitempty"`
	RawLines   []RawLine  `json:"raw_lines,omitempty"`
}

// Clone returns a deep copy.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	out.RawLines = append([]RawLine(nil), q.RawLines...)
	if q.Correct != nil {
		c := *q.Correct
		out.Correct = &c
	}
	if q.Image != nil {
		img := *q.Image
		out.Image = &img
	}
	return out
}

// CorrectText returns the correct option text or "" when unresolved.
func (q Question) CorrectText() string {
	if q.Correct == nil {
		return ""
	}
	return *q.Correct
}
