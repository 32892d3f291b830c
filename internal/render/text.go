package render

import (
	"context"
	"os"
)

// TextRenderer reads plain-text documents; pages are separated by form feeds.
type TextRenderer struct{}

func (TextRenderer) Render(ctx context.Context, path string) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitPages(string(b)), nil
}
