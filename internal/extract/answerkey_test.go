package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAnswerKeyFormats(t *testing.T) {
	in := strings.Join([]string{
		"1,B",
		"2;c",
		"3\tD",
		"4. a",
		"5) (B)",
		"Q6 - C",
		"question 7: d",
		"8 A",
		"",
		"  9 , b ,",
	}, "\n")
	key, skipped, err := ParseAnswerKey(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}
	want := AnswerKey{1: "B", 2: "C", 3: "D", 4: "A", 5: "B", 6: "C", 7: "D", 8: "A", 9: "B"}
	if len(key) != len(want) {
		t.Fatalf("key = %v", key)
	}
	for k, v := range want {
		if key[k] != v {
			t.Fatalf("key[%d] = %q, want %q", k, key[k], v)
		}
	}
}

func TestParseAnswerKeyLeadingByteOrderMark(t *testing.T) {
	key, skipped, err := ParseAnswerKey(strings.NewReader("\ufeff1,B\n2,C\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 || key[1] != "B" || key[2] != "C" {
		t.Fatalf("key = %v, skipped = %v", key, skipped)
	}
}

func TestParseAnswerKeySkipsInvalidRows(t *testing.T) {
	in := "1,B\n0,A\n-2,C\n3,E\nnonsense\n1,C\n4,d\n"
	key, skipped, err := ParseAnswerKey(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key[1] != "B" {
		t.Fatalf("first occurrence must win, got %q", key[1])
	}
	if key[4] != "D" {
		t.Fatalf("valid rows after invalid ones must be kept")
	}
	if len(skipped) != 5 {
		t.Fatalf("expected 5 skipped rows, got %d: %v", len(skipped), skipped)
	}
	rows := []int{2, 3, 4, 5, 6}
	for i, e := range skipped {
		if e.Row != rows[i] {
			t.Fatalf("skipped[%d].Row = %d, want %d", i, e.Row, rows[i])
		}
		if !errors.Is(e, ErrInvalidAnswerKeyRow) {
			t.Fatalf("row error must unwrap to ErrInvalidAnswerKeyRow")
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParseAnswerKeyReadError(t *testing.T) {
	if _, _, err := ParseAnswerKey(failingReader{}); err == nil {
		t.Fatalf("expected read error")
	}
}
