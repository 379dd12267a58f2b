package analytics

import (
	"time"

	"github.com/symone-ai/symone-admin/pkg/types"
)

// BuildSessions reconstructs connection sessions from an ordered stream of
// connect/tool/disconnect events. Events must be ordered by timestamp within
// each connection ID; no ordering is required across connections.
//
// A session with no disconnect is reported with "now" as its provisional close
// time. It stays marked active while its last activity is within the liveness
// timeout; beyond that it is treated as implicitly closed.
func BuildSessions(events []types.SessionEvent, now time.Time, livenessTimeout time.Duration) []types.Session {
	open := make(map[string]*types.Session)
	order := make([]string, 0)
	closed := make([]types.Session, 0)

	for _, ev := range events {
		switch ev.Kind {
		case types.SessionEventConnect:
			// A reconnect on the same connection ID starts a new session
			if prev, ok := open[ev.ConnectionID]; ok {
				closed = append(closed, finishSession(prev, prev.LastActivityAt, false))
				delete(open, ev.ConnectionID)
			}
			open[ev.ConnectionID] = &types.Session{
				ConnectionID:   ev.ConnectionID,
				TeamID:         ev.TeamID,
				UserID:         ev.UserID,
				ConnectedAt:    ev.OccurredAt,
				LastActivityAt: ev.OccurredAt,
			}
			order = append(order, ev.ConnectionID)

		case types.SessionEventTool:
			s, ok := open[ev.ConnectionID]
			if !ok {
				// Connect fell before the window; open implicitly so the
				// overlapping portion is still accounted for
				s = &types.Session{
					ConnectionID:   ev.ConnectionID,
					TeamID:         ev.TeamID,
					UserID:         ev.UserID,
					ConnectedAt:    ev.OccurredAt,
					LastActivityAt: ev.OccurredAt,
				}
				open[ev.ConnectionID] = s
				order = append(order, ev.ConnectionID)
			}
			s.LastActivityAt = ev.OccurredAt
			s.ToolExecutionCount++
			s.BusySeconds += ev.DurationSeconds

		case types.SessionEventDisconnect:
			s, ok := open[ev.ConnectionID]
			if !ok {
				continue
			}
			closed = append(closed, finishSession(s, ev.OccurredAt, false))
			delete(open, ev.ConnectionID)
		}
	}

	// Close out sessions that never saw a disconnect. "now" is the provisional
	// close time either way; the liveness timeout only decides the active flag.
	for _, id := range order {
		s, ok := open[id]
		if !ok {
			continue
		}
		active := now.Sub(s.LastActivityAt) <= livenessTimeout
		closed = append(closed, finishSession(s, now, active))
		delete(open, id)
	}

	return closed
}

// finishSession seals a session at closedAt and computes its idle time.
// Activity accounting must never overshoot elapsed time; when it does, idle is
// clamped to zero and the session flagged for data quality.
func finishSession(s *types.Session, closedAt time.Time, active bool) types.Session {
	out := *s
	out.ClosedAt = closedAt
	out.Active = active

	elapsed := out.ClosedAt.Sub(out.ConnectedAt).Seconds()
	idle := elapsed - out.BusySeconds
	if idle < 0 {
		idle = 0
		out.ClampedIdle = true
	}
	out.IdleSeconds = idle

	return out
}

// ActiveSessions filters to the sessions still holding a live connection
func ActiveSessions(sessions []types.Session) []types.Session {
	out := make([]types.Session, 0)
	for _, s := range sessions {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}
