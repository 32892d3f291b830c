package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Rect is an image bounding box in page pixels. Renderers that cannot
// locate an image on the page report only its size.
type Rect struct {
	X, Y, W, H int
}

// Image is a raster extracted from a page.
type Image struct {
	Page   int    `json:"page"`
	Index  int    `json:"index"`
	Box    Rect   `json:"box"`
	Format string `json:"format"` // png|jpeg
	Data   []byte `json:"-"`
}

// Page is one rendered page: non-blank normalized lines in reading order
// plus any images found on it. Number is 1-based.
type Page struct {
	Number int
	Lines  []string
	Images []Image
}

// Renderer turns a source document into ordered pages.
type Renderer interface {
	Render(ctx context.Context, path string) ([]Page, error)
}

// ForPath picks a renderer by file extension.
func ForPath(path string, pdf Renderer) (Renderer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if pdf == nil {
			return nil, fmt.Errorf("no pdf renderer configured")
		}
		return pdf, nil
	case ".txt", ".text", "":
		return TextRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}

// NormalizeLine collapses internal whitespace and trims the line.
func NormalizeLine(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.Join(strings.Fields(s), " ")
}

// SplitPages splits form-feed separated text into pages of normalized,
// non-blank lines. A trailing empty page (pdftotext ends with \f) is dropped.
func SplitPages(text string) []Page {
	raw := strings.Split(text, "\f")
	if n := len(raw); n > 1 && strings.TrimSpace(raw[n-1]) == "" {
		raw = raw[:n-1]
	}
	pages := make([]Page, 0, len(raw))
	for i, chunk := range raw {
		p := Page{Number: i + 1}
		for _, l := range strings.Split(chunk, "\n") {
			if n := NormalizeLine(l); n != "" {
				p.Lines = append(p.Lines, n)
			}
		}
		pages = append(pages, p)
	}
	return pages
}
