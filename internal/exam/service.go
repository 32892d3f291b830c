package exam

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.RWMutex
	exams   map[string]Exam
	results map[string]Result
}

func NewInMemoryStore() Store {
	return &memoryStore{
		exams:   map[string]Exam{},
		results: map[string]Result{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	if prev, ok := m.exams[e.ID]; ok {
		e.CreatedAt = prev.CreatedAt
	}
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	m.mu.RLock()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	var out []ExamSummary
	for _, e := range m.exams {
		if opts.OwnerID != "" && e.OwnerID != opts.OwnerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Title), q) {
			continue
		}
		out = append(out, e.Summary())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts.Offset, opts.Limit), nil
}

func (m *memoryStore) SaveResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CompletedAt == 0 {
		r.CompletedAt = time.Now().Unix()
	}
	m.results[r.SessionID] = r
	return nil
}

func (m *memoryStore) ListResults(_ context.Context, opts ResultListOpts) ([]Result, error) {
	m.mu.RLock()
	var out []Result
	for _, r := range m.results {
		if opts.UserID != "" && r.UserID != opts.UserID {
			continue
		}
		if opts.ExamID != "" && r.ExamID != opts.ExamID {
			continue
		}
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt != out[j].CompletedAt {
			return out[i].CompletedAt > out[j].CompletedAt
		}
		return out[i].SessionID < out[j].SessionID
	})
	return page(out, opts.Offset, opts.Limit), nil
}

func page[T any](in []T, offset, limit int) []T {
	limit = clampLimit(limit)
	if offset < 0 || offset >= len(in) {
		return []T{}
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}
