// Command quizcli extracts multiple-choice questions from a PDF or text
// document and either prints them as JSON or plays them in the terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/render"
	"github.com/mind-engage/mindengage-quiz/internal/tui"
)

func main() {
	log.SetFlags(0)
	input := flag.String("input", "", "PDF or TXT document to read (required)")
	keyPath := flag.String("key", "", "optional answer key file (CSV or \"1 B\" rows)")
	fallback := flag.String("fallback", "", "fallback answer policy: first|random|none (default from config)")
	seed := flag.Uint64("seed", 0, "seed for the random fallback policy (0 picks one)")
	asJSON := flag.Bool("json", false, "print extracted questions as JSON instead of playing")
	noColor := flag.Bool("no-color", false, "disable colors in the terminal UI")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if *fallback == "" {
		*fallback = cfg.FallbackPolicy
	}
	policy, err := policyFor(*fallback, *seed)
	if err != nil {
		log.Fatal(err)
	}
	key, err := loadKey(*keyPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var ocr render.OCR
	if cfg.EnableOCR {
		ocr = render.NewTesseractOCR(cfg.OCRLang)
	}
	r, err := render.ForPath(*input, render.NewPopplerRenderer(cfg.PdfToTextBin, cfg.PdfImagesBin, ocr))
	if err != nil {
		log.Fatalf("%s: %v", *input, err)
	}
	pages, err := r.Render(ctx, *input)
	if err != nil {
		log.Fatalf("%s: %v", *input, err)
	}
	qs := extract.Run(pages, key, policy)

	if *asJSON || !isTerminal(os.Stdout) {
		if err := writeJSON(os.Stdout, qs); err != nil {
			log.Fatal(err)
		}
		return
	}
	if len(qs) == 0 {
		log.Fatalf("%s: no questions found", *input)
	}

	sess, err := quiz.Start("cli", os.Getenv("USER"), qs)
	if err != nil {
		log.Fatal(err)
	}
	final, err := tea.NewProgram(tui.NewModel(sess, tui.Options{NoColor: *noColor}), tea.WithContext(ctx)).Run()
	if err != nil {
		log.Fatal(err)
	}
	if rep, ok := final.(tui.Model).Report(); ok {
		width := 100
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
		fmt.Println(tui.RenderReport(rep, width, *noColor))
	}
}

func policyFor(name string, seed uint64) (extract.FallbackPolicy, error) {
	if name == "random" && seed != 0 {
		return extract.NewRandomOption(seed), nil
	}
	return extract.PolicyByName(name)
}

func loadKey(path string) (extract.AnswerKey, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	key, skipped, err := extract.ParseAnswerKey(f)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		log.Printf("warning: %v", s)
	}
	return key, nil
}

func writeJSON(w io.Writer, qs []extract.Question) error {
	if qs == nil {
		qs = []extract.Question{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(qs)
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
