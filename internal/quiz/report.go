package quiz

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Report is the final summary of a completed session. Rows is the flat
// table used for export, one row per record.
type Report struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	ExamID    string         `json:"exam_id,omitempty"`
	Total     int            `json:"total"`
	Score     int            `json:"score"`
	Records   []AnswerRecord `json:"records"`
	Rows      [][]string     `json:"-"`
}

// ReportHeader names the columns of Report.Rows.
var ReportHeader = []string{"ordinal", "question", "chosen", "correct", "provenance", "result"}

func rows(recs []AnswerRecord) [][]string {
	out := make([][]string, 0, len(recs))
	for _, r := range recs {
		correct := ""
		if r.Correct != nil {
			correct = *r.Correct
		}
		result := "incorrect"
		switch {
		case r.Correct == nil:
			result = "ungraded"
		case r.IsCorrect:
			result = "correct"
		}
		out = append(out, []string{strconv.Itoa(r.Ordinal), r.Question, r.Chosen, correct, string(r.Provenance), result})
	}
	return out
}

// WriteCSV writes the header, the report rows and a score footer.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(rep.Rows); err != nil {
		return err
	}
	if err := cw.Write([]string{"score", fmt.Sprintf("%d/%d", rep.Score, rep.Total)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
