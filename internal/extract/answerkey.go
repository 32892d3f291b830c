package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidAnswerKeyRow marks a skipped answer-key row.
var ErrInvalidAnswerKeyRow = errors.New("invalid answer key row")

// AnswerKey maps a 1-based question ordinal to an answer letter A-D.
type AnswerKey map[int]string

// RowError describes one skipped row. It unwraps to ErrInvalidAnswerKeyRow.
type RowError struct {
	Row    int
	Raw    string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("answer key row %d %q: %s", e.Row, e.Raw, e.Reason)
}

func (e RowError) Unwrap() error { return ErrInvalidAnswerKeyRow }

// "1,B" "1;b" "1<TAB>B" "1. B" "1) (B)" "Q1 - B" "1 B"
var keyRowRe = regexp.MustCompile(`^(?i:q(?:uestion)?\s*)?(-?\d+)\s*[,;\t.):\-=]?\s*\(?\s*([A-Za-z])\s*\)?\s*[,;]*$`)

// ParseAnswerKey reads answer-key rows. Malformed rows are skipped and
// reported; the returned error is only set when r itself fails. The first
// occurrence of an ordinal wins.
func ParseAnswerKey(r io.Reader) (AnswerKey, []RowError, error) {
	key := AnswerKey{}
	var skipped []RowError
	sc := bufio.NewScanner(r)
	row := 0
	for sc.Scan() {
		row++
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		ordinal, letter, reason := parseKeyRow(line)
		if reason == "" {
			if _, dup := key[ordinal]; dup {
				reason = "duplicate ordinal"
			}
		}
		if reason != "" {
			skipped = append(skipped, RowError{Row: row, Raw: line, Reason: reason})
			continue
		}
		key[ordinal] = letter
	}
	if err := sc.Err(); err != nil {
		return key, skipped, fmt.Errorf("read answer key: %w", err)
	}
	return key, skipped, nil
}

func parseKeyRow(line string) (int, string, string) {
	m := keyRowRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", "expected <ordinal> <letter>"
	}
	ordinal, err := strconv.Atoi(m[1])
	if err != nil || ordinal < 1 {
		return 0, "", "ordinal must be >= 1"
	}
	letter := strings.ToUpper(m[2])
	if _, ok := letterIndex(letter); !ok {
		return 0, "", "letter must be A-D"
	}
	return ordinal, letter, ""
}
