package storage

import (
	"fmt"
	"io"
	"strings"
)

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}

// DocumentKey is where an uploaded source document is kept.
func DocumentKey(examID, ext string) string {
	return fmt.Sprintf("exams/%s/source%s", examID, strings.ToLower(ext))
}

// ImageKey is where the image attached to question ordinal is kept.
func ImageKey(examID string, ordinal int, format string) string {
	ext := strings.ToLower(format)
	if ext == "jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("exams/%s/q%d.%s", examID, ordinal, ext)
}
