package domain

import (
	"strings"
	"time"
)

// EventKind represents the type of a log event.
type EventKind string

const (
	EventKindInfo         EventKind = "info"
	EventKindAgentStart   EventKind = "agent_start"
	EventKindAgentDone    EventKind = "agent_done"
	EventKindAgentError   EventKind = "agent_error"
	EventKindRunDone      EventKind = "run_done"
	EventKindRunCancelled EventKind = "run_cancelled"
	EventKindHeartbeat    EventKind = "heartbeat"
	// EventKindGap is synthesized by the bus when a slow subscriber's
	// queue overflowed and older events were dropped.
	EventKindGap EventKind = "gap"
)

// HeartbeatMarker is embedded in every heartbeat event's text so stream
// consumers can filter liveness pings out of rendered transcripts.
const HeartbeatMarker = "[HEARTBEAT]"

// GapMarker is embedded in every gap event's text.
const GapMarker = "[GAP]"

// LogEvent is a single entry on the live event stream. Events are
// ephemeral: published once, never persisted by the bus itself.
type LogEvent struct {
	Ts      int64     `json:"ts"` // Unix milliseconds
	Kind    EventKind `json:"kind"`
	Text    string    `json:"text"`
	RunID   string    `json:"run_id,omitempty"`
	StageID string    `json:"stage_id,omitempty"`
	Agent   string    `json:"agent,omitempty"`
}

// NewLogEvent creates a LogEvent stamped with the current time.
func NewLogEvent(kind EventKind, text string) LogEvent {
	return LogEvent{
		Ts:   time.Now().UnixMilli(),
		Kind: kind,
		Text: text,
	}
}

// IsHeartbeat reports whether the event is a liveness ping. Both the kind
// and the text marker are checked so filtering works for consumers that
// only see the rendered text line.
func (e LogEvent) IsHeartbeat() bool {
	return e.Kind == EventKindHeartbeat || strings.Contains(e.Text, HeartbeatMarker)
}
