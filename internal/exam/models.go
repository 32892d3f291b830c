package exam

import (
	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Exam is a question set extracted from one uploaded document.
type Exam struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	OwnerID   string             `json:"owner_id"`
	Source    string             `json:"source,omitempty"` // blob key of the uploaded document
	Questions []extract.Question `json:"questions"`
	CreatedAt int64              `json:"created_at,omitempty"`
}

type ExamSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	OwnerID       string `json:"owner_id"`
	QuestionCount int    `json:"question_count"`
	CreatedAt     int64  `json:"created_at"`
}

// Result is the archived report of a finished session.
type Result struct {
	SessionID   string              `json:"session_id"`
	ExamID      string              `json:"exam_id"`
	UserID      string              `json:"user_id"`
	Score       int                 `json:"score"`
	Total       int                 `json:"total"`
	Records     []quiz.AnswerRecord `json:"records"`
	CompletedAt int64               `json:"completed_at"`
}

// StudentView strips correct answers and the raw lines they may be read
// from. Provenance stays visible.
func (e Exam) StudentView() Exam {
	out := e
	out.Questions = make([]extract.Question, len(e.Questions))
	for i, q := range e.Questions {
		c := q.Clone()
		c.Correct = nil
		c.RawLines = nil
		out.Questions[i] = c
	}
	return out
}

func (e Exam) Summary() ExamSummary {
	return ExamSummary{ID: e.ID, Title: e.Title, OwnerID: e.OwnerID, QuestionCount: len(e.Questions), CreatedAt: e.CreatedAt}
}

// ResultFromReport converts a session report into an archive row.
func ResultFromReport(rep quiz.Report, completedAt int64) Result {
	return Result{
		SessionID:   rep.SessionID,
		ExamID:      rep.ExamID,
		UserID:      rep.UserID,
		Score:       rep.Score,
		Total:       rep.Total,
		Records:     append([]quiz.AnswerRecord(nil), rep.Records...),
		CompletedAt: completedAt,
	}
}
