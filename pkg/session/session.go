// Package session keeps independent calculator engines keyed by ID.
package session

import (
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/abacus/pkg/calc"
)

var (
	// ErrNotFound is returned when no session has the requested ID.
	ErrNotFound = errors.New("session not found")
	// ErrLimit is returned when the store is full.
	ErrLimit = errors.New("session limit reached")
)

// Session is one calculator with its own engine.
// Press and the accessors are safe for concurrent use.
type Session struct {
	mu           sync.Mutex
	id           string
	engine       *calc.Engine
	createdAt    time.Time
	lastActivity time.Time
	now          func() time.Time
}

// PressResult reports what happened to a batch of raw keys.
type PressResult struct {
	Display  string   `json:"display"`
	Accepted int      `json:"accepted"`
	Ignored  []string `json:"ignored,omitempty"`
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastActivity returns when the session last received input.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Press normalizes each raw key and applies the accepted ones in order.
// Keys that are not calculator keys are reported in Ignored.
func (s *Session) Press(keys ...string) PressResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result PressResult
	for _, key := range keys {
		tok, ok := calc.Normalize(key)
		if !ok {
			result.Ignored = append(result.Ignored, key)
			continue
		}
		s.engine.Handle(tok)
		result.Accepted++
	}

	s.lastActivity = s.now()
	result.Display = s.engine.Display()
	return result
}

// Display returns the current display text.
func (s *Session) Display() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Display()
}

// State returns a snapshot of the engine state.
func (s *Session) State() calc.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// Store manages multiple sessions.
type Store interface {
	// Create starts a new session.
	Create() (*Session, error)

	// Get returns the session with the given ID.
	Get(id string) (*Session, error)

	// Delete removes a session.
	Delete(id string) error

	// List returns all sessions, oldest first.
	List() []*Session

	// Prune removes sessions idle longer than maxIdle and returns how many.
	Prune(maxIdle time.Duration) int
}

// Options configures a MemoryStore.
type Options struct {
	MaxSessions int              // zero means no limit
	ErrorText   string           // overrides the engine's error text when set
	Logger      arbor.ILogger
	Now         func() time.Time // defaults to time.Now
}

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts Options) *MemoryStore {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Create starts a new session with a fresh engine.
func (st *MemoryStore) Create() (*Session, error) {
	var engineOpts []calc.Option
	if st.opts.ErrorText != "" {
		engineOpts = append(engineOpts, calc.WithErrorText(st.opts.ErrorText))
	}
	if st.opts.Logger != nil {
		engineOpts = append(engineOpts, calc.WithLogger(st.opts.Logger))
	}

	engine, err := calc.New(engineOpts...)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.opts.MaxSessions > 0 && len(st.sessions) >= st.opts.MaxSessions {
		return nil, ErrLimit
	}

	now := st.opts.Now()
	s := &Session{
		id:           uuid.NewString(),
		engine:       engine,
		createdAt:    now,
		lastActivity: now,
		now:          st.opts.Now,
	}
	st.sessions[s.id] = s

	if st.opts.Logger != nil {
		st.opts.Logger.Debug().Str("session", s.id).Msg("session created")
	}
	return s, nil
}

// Get returns the session with the given ID.
func (st *MemoryStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session.
func (st *MemoryStore) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// List returns all sessions, oldest first.
func (st *MemoryStore) List() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].createdAt.Equal(result[j].createdAt) {
			return result[i].id < result[j].id
		}
		return result[i].createdAt.Before(result[j].createdAt)
	})
	return result
}

// Prune removes sessions idle longer than maxIdle. A non-positive maxIdle
// prunes nothing.
func (st *MemoryStore) Prune(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	cutoff := st.opts.Now().Add(-maxIdle)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.LastActivity().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}

	if removed > 0 && st.opts.Logger != nil {
		st.opts.Logger.Debug().Str("removed", strconv.Itoa(removed)).Msg("pruned idle sessions")
	}
	return removed
}

// Len returns the number of live sessions.
func (st *MemoryStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
