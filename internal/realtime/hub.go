package realtime

import (
	"sync"
	"time"

	"github.com/wonny/srm-sim/pkg/logger"
)

const subscriberBuffer = 16

// Subscription receives the events of one session until closed
type Subscription struct {
	C <-chan Event

	ch        chan Event
	sessionID string
	hub       *Hub
	once      sync.Once
}

// Close detaches the subscription from its hub
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans turn events out to the subscribers of each session
// ⭐ SSOT: 세션별 구독자 관리는 이 허브에서만
type Hub struct {
	logger *logger.Logger

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		logger: log,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscriber for a session
func (h *Hub) Subscribe(sessionID string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, sessionID: sessionID, hub: h}

	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers an event to every subscriber of its session.
// A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[ev.SessionID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			h.logger.WithField("session", ev.SessionID).Warnf("Stream subscriber too slow, %s event dropped", ev.Kind)
		}
	}
	return delivered
}

// CloseSession sends a closed event and detaches every subscriber of a session
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	set := h.subs[sessionID]
	delete(h.subs, sessionID)
	h.mu.Unlock()

	closed := Event{Kind: EventClosed, SessionID: sessionID, Timestamp: time.Now()}
	for sub := range set {
		select {
		case sub.ch <- closed:
		default:
		}
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Subscribers returns the number of live subscribers of a session
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[sub.sessionID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.sessionID)
		}
	}
	h.mu.Unlock()

	sub.once.Do(func() { close(sub.ch) })
}
