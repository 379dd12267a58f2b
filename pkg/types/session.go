package types

import "time"

// Session is a logical connection session reconstructed from session events.
// Sessions are derived per query and never persisted.
type Session struct {
	ConnectionID       string    `json:"connection_id"`
	TeamID             string    `json:"team_id"`
	UserID             string    `json:"user_id,omitempty"`
	ConnectedAt        time.Time `json:"connected_at"`
	LastActivityAt     time.Time `json:"last_activity_at"`
	ClosedAt           time.Time `json:"closed_at"` // provisional "now" for open sessions
	ToolExecutionCount int       `json:"tool_execution_count"`
	BusySeconds        float64   `json:"busy_seconds"`
	IdleSeconds        float64   `json:"idle_seconds"`
	Active             bool      `json:"active"`
	// ClampedIdle marks sessions whose busy time overshot elapsed time, a
	// data-quality signal rather than an error.
	ClampedIdle bool `json:"clamped_idle,omitempty"`
}

// DurationSeconds returns the session's elapsed time from connect to close
func (s *Session) DurationSeconds() float64 {
	return s.ClosedAt.Sub(s.ConnectedAt).Seconds()
}

// DurationHours returns the session's elapsed time in hours
func (s *Session) DurationHours() float64 {
	return s.ClosedAt.Sub(s.ConnectedAt).Hours()
}

// ActiveConnection is a currently open connection as reported to the dashboard
type ActiveConnection struct {
	ID              string    `json:"id"`
	TeamID          string    `json:"team_id"`
	TeamName        string    `json:"team_name"`
	ConnectedAt     time.Time `json:"connected_at"`
	DurationMinutes float64   `json:"duration_minutes"`
	ToolsExecuted   int       `json:"tools_executed"`
}

// ActiveConnectionsReport lists all currently open connections
type ActiveConnectionsReport struct {
	ActiveCount int                `json:"active_count"`
	Connections []ActiveConnection `json:"connections"`
}
