package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PopplerRenderer shells out to pdftotext and pdfimages. Image extraction
// and OCR are best effort: their failures are logged, never returned.
type PopplerRenderer struct {
	PdfToText string
	PdfImages string
	OCR       OCR // optional, used for pages without a text layer
	Timeout   time.Duration
}

func NewPopplerRenderer(pdftotext, pdfimages string, ocr OCR) *PopplerRenderer {
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	if pdfimages == "" {
		pdfimages = "pdfimages"
	}
	return &PopplerRenderer{PdfToText: pdftotext, PdfImages: pdfimages, OCR: ocr, Timeout: 60 * time.Second}
}

func (p *PopplerRenderer) Render(ctx context.Context, path string) ([]Page, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	text, err := p.extractText(ctx, path)
	if err != nil {
		return nil, err
	}
	pages := SplitPages(text)

	images, err := p.extractImages(ctx, path)
	if err != nil {
		log.Printf("render: images skipped for %s: %v", filepath.Base(path), err)
	}
	for _, img := range images {
		for len(pages) < img.Page {
			pages = append(pages, Page{Number: len(pages) + 1})
		}
		pg := &pages[img.Page-1]
		img.Index = len(pg.Images)
		pg.Images = append(pg.Images, img)
	}

	if p.OCR != nil {
		for i := range pages {
			if len(pages[i].Lines) > 0 || len(pages[i].Images) == 0 {
				continue
			}
			pages[i].Lines = p.ocrPage(ctx, pages[i])
		}
	}
	return pages, nil
}

func (p *PopplerRenderer) extractText(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, p.PdfToText, "-enc", "UTF-8", path, "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// pdfimages -p names files <root>-<page>-<num>.<ext>
var imageFileRe = regexp.MustCompile(`-(\d+)-(\d+)\.(png|jpg|jpeg)$`)

func (p *PopplerRenderer) extractImages(ctx context.Context, path string) ([]Image, error) {
	dir, err := os.MkdirTemp("", "pdfimages-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, p.PdfImages, "-png", "-p", path, filepath.Join(dir, "img"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdfimages failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type found struct {
		page, num int
		name, ext string
	}
	var files []found
	for _, e := range entries {
		m := imageFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		page, _ := strconv.Atoi(m[1])
		num, _ := strconv.Atoi(m[2])
		if page < 1 {
			continue
		}
		files = append(files, found{page: page, num: num, name: e.Name(), ext: m[3]})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].page == files[j].page {
			return files[i].num < files[j].num
		}
		return files[i].page < files[j].page
	})

	images := make([]Image, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return images, err
		}
		img := Image{Page: f.page, Format: f.ext, Data: data}
		if f.ext == "jpg" {
			img.Format = "jpeg"
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			img.Box = Rect{W: cfg.Width, H: cfg.Height}
		}
		images = append(images, img)
	}
	return images, nil
}

func (p *PopplerRenderer) ocrPage(ctx context.Context, pg Page) []string {
	var lines []string
	for _, img := range pg.Images {
		text, err := p.OCR.Extract(ctx, bytes.NewReader(img.Data))
		if err != nil {
			log.Printf("render: ocr page %d: %v", pg.Number, err)
			continue
		}
		for _, l := range strings.Split(text, "\n") {
			if n := NormalizeLine(l); n != "" {
				lines = append(lines, n)
			}
		}
	}
	return lines
}
