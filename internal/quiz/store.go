package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store holds live sessions keyed by ID. Update runs fn with exclusive
// access to one session; no two calls for the same ID overlap. Missing,
// deleted and expired sessions yield ErrUnknownSession.
type Store interface {
	Create(s *Session) error
	Update(id string, fn func(*Session) error) error
	Delete(id string) error
}

// Clock provides the current time for expiry decisions.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Option func(*MemoryStore)

func WithClock(c Clock) Option { return func(m *MemoryStore) { m.clock = c } }

// WithIdleTimeout sets how long a session may go untouched. Zero disables
// expiry.
func WithIdleTimeout(d time.Duration) Option { return func(m *MemoryStore) { m.idle = d } }

// WithExpireHook is called, outside any lock, for every expired session.
func WithExpireHook(fn func(*Session)) Option { return func(m *MemoryStore) { m.onExpire = fn } }

type entry struct {
	mu       sync.Mutex
	s        *Session
	lastUsed time.Time
	gone     bool
}

// MemoryStore is a process-local Store with per-session locks and idle
// expiry. Lock order is entry before store.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]*entry
	clock    Clock
	idle     time.Duration
	onExpire func(*Session)
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	m := &MemoryStore{
		entries: map[string]*entry{},
		clock:   realClock{},
		idle:    30 * time.Minute,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *MemoryStore) Create(s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("create session: missing id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[s.ID]; ok {
		return fmt.Errorf("create session %s: already exists", s.ID)
	}
	m.entries[s.ID] = &entry{s: s, lastUsed: m.clock.Now()}
	return nil
}

func (m *MemoryStore) lookup(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[id]
}

// remove drops e from the map if it is still the entry stored under id.
// Caller holds e.mu.
func (m *MemoryStore) remove(id string, e *entry) {
	e.gone = true
	m.mu.Lock()
	if m.entries[id] == e {
		delete(m.entries, id)
	}
	m.mu.Unlock()
}

func (m *MemoryStore) expired(e *entry, now time.Time) bool {
	return m.idle > 0 && now.Sub(e.lastUsed) > m.idle
}

func (m *MemoryStore) Update(id string, fn func(*Session) error) error {
	e := m.lookup(id)
	if e == nil {
		return fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	e.mu.Lock()
	if e.gone {
		e.mu.Unlock()
		return fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	now := m.clock.Now()
	if m.expired(e, now) {
		m.remove(id, e)
		e.mu.Unlock()
		m.notify(e.s)
		return fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	defer e.mu.Unlock()
	e.lastUsed = now
	return fn(e.s)
}

func (m *MemoryStore) Delete(id string) error {
	e := m.lookup(id)
	if e == nil {
		return fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	m.remove(id, e)
	return nil
}

// Len reports the number of stored sessions, expired ones included until
// the next sweep.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep removes sessions idle longer than the timeout as of now and returns
// them.
func (m *MemoryStore) Sweep(now time.Time) []*Session {
	m.mu.Lock()
	candidates := make(map[string]*entry, len(m.entries))
	for id, e := range m.entries {
		candidates[id] = e
	}
	m.mu.Unlock()

	var out []*Session
	for id, e := range candidates {
		e.mu.Lock()
		if !e.gone && m.expired(e, now) {
			m.remove(id, e)
			out = append(out, e.s)
		}
		e.mu.Unlock()
	}
	for _, s := range out {
		m.notify(s)
	}
	return out
}

// Run sweeps every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(m.clock.Now())
		}
	}
}

func (m *MemoryStore) notify(s *Session) {
	if m.onExpire != nil {
		m.onExpire(s)
	}
}
