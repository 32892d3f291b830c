package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newStoredSession(t *testing.T, st Store, id string) {
	t.Helper()
	s, err := Start(id, "u1", twoQuestions())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := st.Create(s); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	st := NewMemoryStore()
	newStoredSession(t, st, "a")
	if err := st.Create(&Session{ID: "a"}); err == nil {
		t.Fatalf("duplicate id must be rejected")
	}

	err := st.Update("a", func(s *Session) error {
		_, err := s.Submit(1, "4")
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	err = st.Update("a", func(s *Session) error {
		_, err := s.Submit(1, "4")
		return err
	})
	if !errors.Is(err, ErrStaleSubmission) {
		t.Fatalf("expected stale error through the store, got %v", err)
	}

	if err := st.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Update("a", func(*Session) error { return nil }); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected unknown session after delete, got %v", err)
	}
	if err := st.Delete("a"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("second delete: %v", err)
	}
	if err := st.Update("missing", func(*Session) error { return nil }); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("missing session: %v", err)
	}
}

func TestMemoryStoreSweepExpiresIdleSessions(t *testing.T) {
	clock := newFakeClock()
	var expired []string
	st := NewMemoryStore(
		WithClock(clock),
		WithIdleTimeout(10*time.Minute),
		WithExpireHook(func(s *Session) { expired = append(expired, s.ID) }),
	)
	newStoredSession(t, st, "idle")
	newStoredSession(t, st, "busy")

	clock.Advance(6 * time.Minute)
	if err := st.Update("busy", func(*Session) error { return nil }); err != nil {
		t.Fatalf("touch: %v", err)
	}
	clock.Advance(6 * time.Minute)

	gone := st.Sweep(clock.Now())
	if len(gone) != 1 || gone[0].ID != "idle" {
		t.Fatalf("sweep removed %v", gone)
	}
	if len(expired) != 1 || expired[0] != "idle" {
		t.Fatalf("expire hook saw %v", expired)
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d", st.Len())
	}
	if err := st.Update("idle", func(*Session) error { return nil }); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expired session still reachable: %v", err)
	}
	if err := st.Update("busy", func(*Session) error { return nil }); err != nil {
		t.Fatalf("active session lost: %v", err)
	}
}

func TestMemoryStoreExpiresLazilyOnAccess(t *testing.T) {
	clock := newFakeClock()
	st := NewMemoryStore(WithClock(clock), WithIdleTimeout(time.Minute))
	newStoredSession(t, st, "a")
	clock.Advance(2 * time.Minute)
	if err := st.Update("a", func(*Session) error { return nil }); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected expiry on access, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("expired entry not removed")
	}
}

func TestMemoryStoreSerializesSubmissions(t *testing.T) {
	st := NewMemoryStore()
	newStoredSession(t, st, "a")

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, stale := 0, 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Update("a", func(s *Session) error {
				_, err := s.Submit(1, "4")
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrStaleSubmission):
				stale++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if accepted != 1 || stale != 31 {
		t.Fatalf("accepted %d stale %d", accepted, stale)
	}
	st.Update("a", func(s *Session) error {
		if s.Answered() != 1 || s.Score() != 1 {
			t.Fatalf("duplicate delivery changed the session: %d/%d", s.Answered(), s.Score())
		}
		return nil
	})
}

func TestMemoryStoreRunStopsOnCancel(t *testing.T) {
	st := NewMemoryStore(WithIdleTimeout(time.Nanosecond))
	newStoredSession(t, st, "a")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for st.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("janitor did not sweep")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
