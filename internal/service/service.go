// Package service glues extraction, persistence and quiz sessions together
// for the HTTP, Telegram and terminal front ends.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/extract"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/render"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

// ErrNoQuestionsFound is returned when a readable document yields no
// valid question.
var ErrNoQuestionsFound = errors.New("no questions found")

// EventSink receives session lifecycle events. syncx.EventRepo satisfies it.
type EventSink interface {
	Append(ctx context.Context, e syncx.Event) error
}

type Deps struct {
	PDF      render.Renderer // nil disables pdf input
	Policy   extract.FallbackPolicy
	Sessions quiz.Store
	Exams    exam.Store
	Blobs    storage.BlobStore // optional
	Events   EventSink         // optional
}

type Service struct {
	pdf      render.Renderer
	policy   extract.FallbackPolicy
	sessions quiz.Store
	exams    exam.Store
	blobs    storage.BlobStore
	events   EventSink

	newID func() string
	now   func() time.Time
}

func New(d Deps) *Service {
	if d.Policy == nil {
		d.Policy = extract.NoFallback{}
	}
	return &Service{
		pdf:      d.PDF,
		policy:   d.Policy,
		sessions: d.Sessions,
		exams:    d.Exams,
		blobs:    d.Blobs,
		events:   d.Events,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Prompt is the learner-facing view of the current question; the correct
// answer is never included.
type Prompt struct {
	SessionID  string             `json:"session_id"`
	Ordinal    int                `json:"ordinal"`
	Total      int                `json:"total"`
	Text       string             `json:"text"`
	Options    []string           `json:"options"`
	Provenance extract.Provenance `json:"provenance"`
	Image      *extract.ImageRef  `json:"image,omitempty"`
}

// Outcome of SubmitAnswer: the verdict plus either the next prompt or
// ReportReady.
type Outcome struct {
	Verdict     quiz.Verdict `json:"verdict"`
	Next        *Prompt      `json:"next,omitempty"`
	ReportReady bool         `json:"report_ready"`
}

func promptFor(s *quiz.Session) (Prompt, bool) {
	q, ord, ok := s.Current()
	if !ok {
		return Prompt{}, false
	}
	return Prompt{
		SessionID:  s.ID,
		Ordinal:    ord,
		Total:      s.Total(),
		Text:       q.Text,
		Options:    q.Options,
		Provenance: q.Provenance,
		Image:      q.Image,
	}, true
}

func (s *Service) render(ctx context.Context, path string) ([]render.Page, error) {
	r, err := render.ForPath(path, s.pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", extract.ErrParseFailure, err)
	}
	pages, err := r.Render(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", extract.ErrParseFailure, err)
	}
	return pages, nil
}

// Extract renders the document at path and runs the question pipeline. A
// document with no questions yields an empty slice and no error.
func (s *Service) Extract(ctx context.Context, path string, key extract.AnswerKey) ([]extract.Question, error) {
	pages, err := s.render(ctx, path)
	if err != nil {
		return nil, err
	}
	return extract.Run(pages, key, s.policy), nil
}

// CreateExam extracts questions from path and stores them as an exam owned
// by ownerID, together with the source document and attached images.
func (s *Service) CreateExam(ctx context.Context, ownerID, title, path string, key extract.AnswerKey) (exam.Exam, error) {
	pages, err := s.render(ctx, path)
	if err != nil {
		return exam.Exam{}, err
	}
	qs := extract.Run(pages, key, s.policy)
	if len(qs) == 0 {
		return exam.Exam{}, ErrNoQuestionsFound
	}

	e := exam.Exam{
		ID:        s.newID(),
		Title:     strings.TrimSpace(title),
		OwnerID:   ownerID,
		Questions: make([]extract.Question, len(qs)),
		CreatedAt: s.now().Unix(),
	}
	if e.Title == "" {
		e.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for i, q := range qs {
		e.Questions[i] = q.Clone()
	}
	if s.blobs != nil {
		e.Source = s.storeSource(e.ID, path)
		s.storeImages(e.ID, pages, e.Questions)
	}
	if err := s.exams.PutExam(ctx, e); err != nil {
		return exam.Exam{}, fmt.Errorf("save exam: %w", err)
	}
	log.Printf("exam %s: %d questions from %s", e.ID, len(e.Questions), filepath.Base(path))
	return e, nil
}

func (s *Service) storeSource(examID, path string) string {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("exam %s: open source: %v", examID, err)
		return ""
	}
	defer f.Close()
	key, err := s.blobs.Put(storage.DocumentKey(examID, filepath.Ext(path)), f)
	if err != nil {
		log.Printf("exam %s: store source: %v", examID, err)
		return ""
	}
	return key
}

// storeImages writes each attached raster and records its key on the
// question. Questions whose image cannot be stored lose the reference.
func (s *Service) storeImages(examID string, pages []render.Page, qs []extract.Question) {
	byPage := make(map[int]render.Page, len(pages))
	for _, p := range pages {
		byPage[p.Number] = p
	}
	for i := range qs {
		ref := qs[i].Image
		if ref == nil {
			continue
		}
		var data []byte
		for _, img := range byPage[ref.Page].Images {
			if img.Index == ref.Index {
				data = img.Data
			}
		}
		if len(data) == 0 {
			qs[i].Image = nil
			continue
		}
		key, err := s.blobs.Put(storage.ImageKey(examID, i+1, ref.Format), bytes.NewReader(data))
		if err != nil {
			log.Printf("exam %s: store image for q%d: %v", examID, i+1, err)
			qs[i].Image = nil
			continue
		}
		ref.Key = key
	}
}

// StartSession opens a quiz over questions for userID and returns the
// session id.
func (s *Service) StartSession(ctx context.Context, userID string, questions []extract.Question) (string, error) {
	p, err := s.start(ctx, userID, "", questions)
	return p.SessionID, err
}

// StartExam opens a session over a stored exam and returns the first prompt.
func (s *Service) StartExam(ctx context.Context, userID, examID string) (Prompt, error) {
	e, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return Prompt{}, err
	}
	return s.start(ctx, userID, e.ID, e.Questions)
}

func (s *Service) start(ctx context.Context, userID, examID string, questions []extract.Question) (Prompt, error) {
	sess, err := quiz.Start(s.newID(), userID, questions)
	if err != nil {
		return Prompt{}, err
	}
	sess.ExamID = examID
	p, _ := promptFor(sess)
	if err := s.sessions.Create(sess); err != nil {
		return Prompt{}, err
	}
	s.emit(ctx, syncx.SessionStarted, sess.ID, map[string]any{
		"user_id": userID, "exam_id": examID, "total": sess.Total(),
	})
	return p, nil
}

// Ingest creates an exam from the document and starts a session on it for
// userID. Documents without questions yield ErrNoQuestionsFound.
func (s *Service) Ingest(ctx context.Context, userID, path string, key extract.AnswerKey) (Prompt, error) {
	e, err := s.CreateExam(ctx, userID, "", path, key)
	if err != nil {
		return Prompt{}, err
	}
	return s.start(ctx, userID, e.ID, e.Questions)
}

// Current returns the prompt awaiting an answer. done is true once every
// question has been answered.
func (s *Service) Current(_ context.Context, sessionID string) (p Prompt, done bool, err error) {
	err = s.sessions.Update(sessionID, func(sess *quiz.Session) error {
		var ok bool
		p, ok = promptFor(sess)
		done = !ok
		return nil
	})
	return p, done, err
}

// SessionOwner returns the user a session belongs to.
func (s *Service) SessionOwner(_ context.Context, sessionID string) (string, error) {
	var owner string
	err := s.sessions.Update(sessionID, func(sess *quiz.Session) error {
		owner = sess.UserID
		return nil
	})
	return owner, err
}

// OptionText maps a zero-based option index of question ordinal to its
// text. A non-current ordinal is stale.
func (s *Service) OptionText(_ context.Context, sessionID string, ordinal, index int) (string, error) {
	var text string
	err := s.sessions.Update(sessionID, func(sess *quiz.Session) error {
		q, ord, ok := sess.Current()
		if !ok || ord != ordinal {
			return quiz.ErrStaleSubmission
		}
		if index < 0 || index >= len(q.Options) {
			return fmt.Errorf("option %d out of range", index)
		}
		text = q.Options[index]
		return nil
	})
	return text, err
}

// SubmitAnswer applies one answer. Replays and out-of-order ordinals fail
// with quiz.ErrStaleSubmission without changing the session.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, ordinal int, choice string) (Outcome, error) {
	var out Outcome
	err := s.sessions.Update(sessionID, func(sess *quiz.Session) error {
		v, err := sess.Submit(ordinal, choice)
		if err != nil {
			return err
		}
		out.Verdict = v
		if p, ok := promptFor(sess); ok {
			out.Next = &p
		} else {
			out.ReportReady = true
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	s.emit(ctx, syncx.AnswerAccepted, sessionID, out.Verdict.Record)
	return out, nil
}

// Report returns the final report, archives it and tears the session down.
// A second call fails with quiz.ErrUnknownSession.
func (s *Service) Report(ctx context.Context, sessionID string) (quiz.Report, error) {
	var rep quiz.Report
	err := s.sessions.Update(sessionID, func(sess *quiz.Session) error {
		var err error
		rep, err = sess.Report()
		return err
	})
	if err != nil {
		return quiz.Report{}, err
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		return quiz.Report{}, err
	}
	if rep.ExamID != "" {
		if err := s.exams.SaveResult(ctx, exam.ResultFromReport(rep, s.now().Unix())); err != nil {
			log.Printf("session %s: archive result: %v", sessionID, err)
		}
	}
	s.emit(ctx, syncx.SessionCompleted, sessionID, map[string]any{
		"user_id": rep.UserID, "exam_id": rep.ExamID, "score": rep.Score, "total": rep.Total,
	})
	return rep, nil
}

// SessionExpired records an idle-expired session. It is meant as the
// session store's expire hook.
func (s *Service) SessionExpired(sess *quiz.Session) {
	log.Printf("session %s expired (user %s, %d/%d answered)", sess.ID, sess.UserID, sess.Answered(), sess.Total())
	s.emit(context.Background(), syncx.SessionExpired, sess.ID, map[string]any{
		"user_id": sess.UserID, "exam_id": sess.ExamID, "answered": sess.Answered(), "total": sess.Total(),
	})
}

// OpenBlob returns a stored document or image.
func (s *Service) OpenBlob(key string) (io.ReadCloser, error) {
	if s.blobs == nil {
		return nil, errors.New("blob storage not configured")
	}
	return s.blobs.Get(key)
}

func (s *Service) emit(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	ev, err := syncx.NewEvent(typ, key, data)
	if err == nil {
		err = s.events.Append(ctx, ev)
	}
	if err != nil {
		log.Printf("event %s %s: %v", typ, key, err)
	}
}
