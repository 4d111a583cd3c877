package realtime

import (
	"time"

	"github.com/wonny/srm-sim/internal/contracts"
)

// EventKind tags stream messages
type EventKind string

const (
	EventTurn   EventKind = "turn"   // a turn was advanced
	EventClosed EventKind = "closed" // the session was evicted or finished
)

// Event is one message pushed to stream subscribers
// ⭐ SSOT: 실시간 스트림 메시지 구조
type Event struct {
	Kind      EventKind             `json:"kind"`
	SessionID string                `json:"session_id"`
	Report    *contracts.TurnReport `json:"report,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// TurnEvent wraps a turn report
func TurnEvent(sessionID string, report *contracts.TurnReport) Event {
	return Event{
		Kind:      EventTurn,
		SessionID: sessionID,
		Report:    report,
		Timestamp: time.Now(),
	}
}
