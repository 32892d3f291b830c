package exam

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("exam not found")

type ListOpts struct {
	Q       string
	OwnerID string // empty lists every owner
	Limit   int
	Offset  int
}

type ResultListOpts struct {
	UserID string // empty lists every user
	ExamID string
	Limit  int
	Offset int
}

type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error) // full exam, answers included
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)

	SaveResult(ctx context.Context, r Result) error
	ListResults(ctx context.Context, opts ResultListOpts) ([]Result, error)
}

func clampLimit(n int) int {
	if n <= 0 || n > 200 {
		return 50
	}
	return n
}
