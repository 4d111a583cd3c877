package sessions

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/srm-sim/internal/engine"
)

// ErrNotFound is returned for unknown or evicted session ids
var ErrNotFound = errors.New("session not found")

// Limits bounds how fast a single session may be driven
type Limits struct {
	RatePerSec float64
	Burst      int
}

// Hosted is a session owned by the store. Every access goes through Do,
// which serialises callers on the session's own mutex.
type Hosted struct {
	id      string
	limiter *rate.Limiter

	mu       sync.Mutex
	session  *engine.Session
	lastUsed time.Time
}

// ID returns the session id
func (h *Hosted) ID() string { return h.id }

// Allow reports whether the session's request budget admits one more call
func (h *Hosted) Allow() bool {
	return h.limiter.Allow()
}

// Do runs fn with exclusive access to the session
func (h *Hosted) Do(fn func(s *engine.Session) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastUsed = time.Now()
	return fn(h.session)
}

func (h *Hosted) idleSince() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastUsed
}

// Observer is told about store size changes (metrics gauge)
type Observer interface {
	SetActiveSessions(n int)
}

// Store hosts in-memory sessions for the API
// ⭐ SSOT: 서버가 보유한 세션 목록은 여기서만 관리 (세션당 mutex 1개)
type Store struct {
	cfg    engine.Config
	opts   []engine.Option
	limits Limits

	mu       sync.RWMutex
	sessions map[string]*Hosted

	observer Observer
	onEvict  func(id string)
}

// NewStore creates a store that builds sessions from cfg and base options
func NewStore(cfg engine.Config, limits Limits, opts ...engine.Option) *Store {
	if limits.RatePerSec <= 0 {
		limits.RatePerSec = float64(rate.Inf)
	}
	if limits.Burst < 1 {
		limits.Burst = 1
	}
	return &Store{
		cfg:      cfg,
		opts:     opts,
		limits:   limits,
		sessions: make(map[string]*Hosted),
	}
}

// SetObserver registers the size observer
func (st *Store) SetObserver(o Observer) {
	st.observer = o
}

// OnEvict registers a hook called with the id of every removed session
func (st *Store) OnEvict(fn func(id string)) {
	st.onEvict = fn
}

// Create starts a new session. extra options are applied after the store's own.
func (st *Store) Create(extra ...engine.Option) (*Hosted, error) {
	opts := append(append([]engine.Option{}, st.opts...), extra...)
	session, err := engine.NewSession(st.cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	h := &Hosted{
		id:       session.ID(),
		limiter:  rate.NewLimiter(rate.Limit(st.limits.RatePerSec), st.limits.Burst),
		session:  session,
		lastUsed: time.Now(),
	}

	st.mu.Lock()
	st.sessions[h.id] = h
	n := len(st.sessions)
	st.mu.Unlock()

	st.notify(n)
	return h, nil
}

// Get looks up a hosted session
func (st *Store) Get(id string) (*Hosted, error) {
	st.mu.RLock()
	h, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return h, nil
}

// Delete removes a session
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	st.evicted(id, n)
	return nil
}

// Reap evicts every session unused for longer than ttl and returns their ids
func (st *Store) Reap(now time.Time, ttl time.Duration) []string {
	st.mu.RLock()
	var stale []string
	for id, h := range st.sessions {
		if now.Sub(h.idleSince()) > ttl {
			stale = append(stale, id)
		}
	}
	st.mu.RUnlock()

	sort.Strings(stale)
	evicted := make([]string, 0, len(stale))
	for _, id := range stale {
		if err := st.Delete(id); err == nil {
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Len returns the number of hosted sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) evicted(id string, n int) {
	if st.onEvict != nil {
		st.onEvict(id)
	}
	st.notify(n)
}

func (st *Store) notify(n int) {
	if st.observer != nil {
		st.observer.SetActiveSessions(n)
	}
}
