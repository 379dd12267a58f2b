package types

import "time"

// UsageEvent is a single billable request or tool execution recorded by the
// serving layer. Events are append-only; the analytics engine never mutates them.
type UsageEvent struct {
	ID             string    `json:"id"`
	TeamID         string    `json:"team_id"`
	UserID         string    `json:"user_id,omitempty"` // empty when no X-User-ID header was supplied
	OccurredAt     time.Time `json:"occurred_at"`
	ComputeSeconds float64   `json:"compute_seconds"`
	ToolName       string    `json:"tool_name"`
	Success        bool      `json:"success"`
}

// SessionEventKind identifies the lifecycle phase a session event records
type SessionEventKind string

const (
	SessionEventConnect    SessionEventKind = "connect"
	SessionEventTool       SessionEventKind = "tool"
	SessionEventDisconnect SessionEventKind = "disconnect"
)

// IsValid checks if the event kind is one of the known kinds
func (k SessionEventKind) IsValid() bool {
	switch k {
	case SessionEventConnect, SessionEventTool, SessionEventDisconnect:
		return true
	default:
		return false
	}
}

// SessionEvent is a connect/tool/disconnect record for one streaming connection.
// Events for a single connection ID are ordered by OccurredAt; no ordering is
// guaranteed across connections.
type SessionEvent struct {
	ID              string           `json:"id"`
	ConnectionID    string           `json:"connection_id"`
	TeamID          string           `json:"team_id"`
	UserID          string           `json:"user_id,omitempty"`
	Kind            SessionEventKind `json:"kind"`
	OccurredAt      time.Time        `json:"occurred_at"`
	ToolName        string           `json:"tool_name,omitempty"`
	DurationSeconds float64          `json:"duration_seconds,omitempty"` // busy time for tool events
}
