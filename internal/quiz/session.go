// Package quiz runs a sequential multiple-choice quiz for one user over an
// extracted question set.
package quiz

import (
	"errors"
	"time"
	"unicode"

	"github.com/mind-engage/mindengage-quiz/internal/extract"
)

var (
	ErrStaleSubmission    = errors.New("stale submission")
	ErrUnknownSession     = errors.New("unknown session")
	ErrEmptyQuestionSet   = errors.New("empty question set")
	ErrSessionNotFinished = errors.New("session not finished")
)

type State string

const (
	StateActive   State = "active"
	StateComplete State = "complete"
)

// AnswerRecord is one accepted submission. Chosen and Correct are the raw
// texts, not the normalized forms used for comparison.
type AnswerRecord struct {
	Ordinal    int                `json:"ordinal"`
	Question   string             `json:"question"`
	Chosen     string             `json:"chosen"`
	Correct    *string            `json:"correct"`
	Provenance extract.Provenance `json:"provenance"`
	IsCorrect  bool               `json:"is_correct"`
}

// Verdict is the outcome of an accepted submission.
type Verdict struct {
	Record AnswerRecord `json:"record"`
	Score  int          `json:"score"`
	Done   bool         `json:"done"`
}

// Session is not safe for concurrent use; Store serializes access.
type Session struct {
	ID        string
	UserID    string
	ExamID    string
	CreatedAt time.Time

	questions []extract.Question
	index     int
	score     int
	records   []AnswerRecord
	state     State
}

// Start opens an active session positioned on the first question.
func Start(id, userID string, questions []extract.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	qs := make([]extract.Question, len(questions))
	for i, q := range questions {
		qs[i] = q.Clone()
	}
	return &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		questions: qs,
		state:     StateActive,
	}, nil
}

func (s *Session) State() State  { return s.state }
func (s *Session) Score() int    { return s.score }
func (s *Session) Total() int    { return len(s.questions) }
func (s *Session) Answered() int { return s.index }

// Current returns the question awaiting an answer and its 1-based ordinal.
// ok is false once the session is complete.
func (s *Session) Current() (q extract.Question, ordinal int, ok bool) {
	if s.state != StateActive || s.index >= len(s.questions) {
		return extract.Question{}, 0, false
	}
	return s.questions[s.index].Clone(), s.index + 1, true
}

// Submit answers the question with the given 1-based ordinal. Any ordinal
// other than the current one, or any submission after completion, fails
// with ErrStaleSubmission and leaves the session unchanged. A question with
// no known correct answer is recorded as incorrect.
func (s *Session) Submit(ordinal int, chosen string) (Verdict, error) {
	if s.state != StateActive || ordinal-1 != s.index {
		return Verdict{}, ErrStaleSubmission
	}
	q := s.questions[s.index]
	rec := AnswerRecord{
		Ordinal:    ordinal,
		Question:   q.Text,
		Chosen:     chosen,
		Provenance: q.Provenance,
	}
	if q.Correct != nil {
		c := *q.Correct
		rec.Correct = &c
		rec.IsCorrect = normalize(chosen) == normalize(c)
	}
	if rec.IsCorrect {
		s.score++
	}
	s.records = append(s.records, rec)
	s.index++
	if s.index == len(s.questions) {
		s.state = StateComplete
	}
	return Verdict{Record: rec, Score: s.score, Done: s.state == StateComplete}, nil
}

// Report summarizes a completed session.
func (s *Session) Report() (Report, error) {
	if s.state != StateComplete {
		return Report{}, ErrSessionNotFinished
	}
	recs := append([]AnswerRecord(nil), s.records...)
	return Report{
		SessionID: s.ID,
		UserID:    s.UserID,
		ExamID:    s.ExamID,
		Total:     len(s.questions),
		Score:     s.score,
		Records:   recs,
		Rows:      rows(recs),
	}, nil
}

// normalize lowercases, collapses runs of whitespace and trims.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && len(out) > 0 {
			out = append(out, ' ')
		}
		space = false
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
