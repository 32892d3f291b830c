package quiz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/mind-engage/mindengage-quiz/internal/extract"
)

// TestSessionFeature runs the quiz session scenarios.
func TestSessionFeature(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz-session",
		ScenarioInitializer: initializeSessionScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("testdata", "session.feature")},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

type sessionScenario struct {
	questions []extract.Question
	session   *Session
	store     *MemoryStore
	clock     *fakeClock
	lastErr   error
}

func initializeSessionScenario(ctx *godog.ScenarioContext) {
	st := &sessionScenario{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*st = sessionScenario{clock: newFakeClock()}
		return ctx, nil
	})

	ctx.Step(`^a quiz with the questions:$`, st.givenQuestions)
	ctx.Step(`^the session is stored with an idle timeout of (\d+) minutes$`, st.givenStored)
	ctx.Step(`^the user answers question (\d+) with "([^"]*)"$`, st.whenAnswer)
	ctx.Step(`^(\d+) minutes pass without activity$`, st.whenTimePasses)
	ctx.Step(`^the janitor runs$`, st.whenJanitorRuns)
	ctx.Step(`^the session is complete$`, st.thenComplete)
	ctx.Step(`^the report shows a score of (\d+) out of (\d+)$`, st.thenScore)
	ctx.Step(`^report row (\d+) has provenance "([^"]*)"$`, st.thenRowProvenance)
	ctx.Step(`^the last submission is rejected as stale$`, st.thenStale)
	ctx.Step(`^(\d+) questions? (?:has|have) been answered with a score of (\d+)$`, st.thenProgress)
	ctx.Step(`^requesting the report fails because the session is not finished$`, st.thenNotFinished)
	ctx.Step(`^the session is unknown$`, st.thenUnknown)
}

func (s *sessionScenario) givenQuestions(tbl *godog.Table) error {
	for i, row := range tbl.Rows {
		if i == 0 {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.Value
		}
		s.questions = append(s.questions, question(cells[0], cells[2], extract.Provenance(cells[3]), strings.Split(cells[1], ",")...))
	}
	sess, err := Start("scenario", "user", s.questions)
	if err != nil {
		return err
	}
	s.session = sess
	return nil
}

func (s *sessionScenario) givenStored(minutes int) error {
	s.store = NewMemoryStore(WithClock(s.clock), WithIdleTimeout(time.Duration(minutes)*time.Minute))
	return s.store.Create(s.session)
}

func (s *sessionScenario) whenAnswer(ordinal int, choice string) error {
	_, s.lastErr = s.session.Submit(ordinal, choice)
	return nil
}

func (s *sessionScenario) whenTimePasses(minutes int) error {
	s.clock.Advance(time.Duration(minutes) * time.Minute)
	return nil
}

func (s *sessionScenario) whenJanitorRuns() error {
	s.store.Sweep(s.clock.Now())
	return nil
}

func (s *sessionScenario) thenComplete() error {
	if s.session.State() != StateComplete {
		return fmt.Errorf("state is %s", s.session.State())
	}
	return nil
}

func (s *sessionScenario) thenScore(score, total int) error {
	rep, err := s.session.Report()
	if err != nil {
		return err
	}
	if rep.Score != score || rep.Total != total {
		return fmt.Errorf("report shows %d/%d", rep.Score, rep.Total)
	}
	return nil
}

func (s *sessionScenario) thenRowProvenance(row int, prov string) error {
	rep, err := s.session.Report()
	if err != nil {
		return err
	}
	if row < 1 || row > len(rep.Rows) {
		return fmt.Errorf("no row %d", row)
	}
	if got := rep.Rows[row-1][4]; got != prov {
		return fmt.Errorf("row %d provenance %q", row, got)
	}
	return nil
}

func (s *sessionScenario) thenStale() error {
	if !errors.Is(s.lastErr, ErrStaleSubmission) {
		return fmt.Errorf("expected stale submission, got %v", s.lastErr)
	}
	return nil
}

func (s *sessionScenario) thenProgress(answered, score int) error {
	if s.session.Answered() != answered || s.session.Score() != score {
		return fmt.Errorf("answered %d score %d", s.session.Answered(), s.session.Score())
	}
	return nil
}

func (s *sessionScenario) thenNotFinished() error {
	if _, err := s.session.Report(); !errors.Is(err, ErrSessionNotFinished) {
		return fmt.Errorf("expected not finished, got %v", err)
	}
	return nil
}

func (s *sessionScenario) thenUnknown() error {
	err := s.store.Update(s.session.ID, func(*Session) error { return nil })
	if !errors.Is(err, ErrUnknownSession) {
		return fmt.Errorf("expected unknown session, got %v", err)
	}
	return nil
}
