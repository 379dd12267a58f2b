package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/symone-ai/symone-admin/internal/analytics"
	"github.com/symone-ai/symone-admin/pkg/types"
)

var trackerNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func sessionEvent(connID string, kind types.SessionEventKind, at time.Time, busy float64) types.SessionEvent {
	return types.SessionEvent{
		ID:              types.GenerateID(),
		ConnectionID:    connID,
		TeamID:          "team-a",
		UserID:          "user-1",
		Kind:            kind,
		OccurredAt:      at,
		DurationSeconds: busy,
	}
}

func TestBuildSessions(t *testing.T) {
	liveness := 10 * time.Minute

	t.Run("closed session accrues busy and idle time", func(t *testing.T) {
		connected := trackerNow.Add(-1 * time.Hour)
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventConnect, connected, 0),
			sessionEvent("conn-1", types.SessionEventTool, connected.Add(10*time.Minute), 120),
			sessionEvent("conn-1", types.SessionEventTool, connected.Add(20*time.Minute), 60),
			sessionEvent("conn-1", types.SessionEventDisconnect, connected.Add(30*time.Minute), 0),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 1)

		s := sessions[0]
		assert.Equal(t, "conn-1", s.ConnectionID)
		assert.Equal(t, 2, s.ToolExecutionCount)
		assert.Equal(t, 180.0, s.BusySeconds)
		// 30 minutes elapsed, 180s busy
		assert.Equal(t, 1800.0-180.0, s.IdleSeconds)
		assert.False(t, s.Active)
		assert.False(t, s.ClampedIdle)
	})

	t.Run("zero-tool session is entirely idle", func(t *testing.T) {
		connected := trackerNow.Add(-1 * time.Hour)
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventConnect, connected, 0),
			sessionEvent("conn-1", types.SessionEventDisconnect, connected.Add(45*time.Minute), 0),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 1)
		assert.Equal(t, 0, sessions[0].ToolExecutionCount)
		assert.Equal(t, sessions[0].DurationSeconds(), sessions[0].IdleSeconds)
	})

	t.Run("idle is clamped when busy overshoots elapsed", func(t *testing.T) {
		connected := trackerNow.Add(-10 * time.Minute)
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventConnect, connected, 0),
			sessionEvent("conn-1", types.SessionEventTool, connected.Add(time.Minute), 3600),
			sessionEvent("conn-1", types.SessionEventDisconnect, connected.Add(2*time.Minute), 0),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 1)
		assert.Equal(t, 0.0, sessions[0].IdleSeconds)
		assert.True(t, sessions[0].ClampedIdle)
	})

	t.Run("open session with recent activity is active with provisional close", func(t *testing.T) {
		connected := trackerNow.Add(-30 * time.Minute)
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventConnect, connected, 0),
			sessionEvent("conn-1", types.SessionEventTool, trackerNow.Add(-2*time.Minute), 5),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 1)
		assert.True(t, sessions[0].Active)
		assert.Equal(t, trackerNow, sessions[0].ClosedAt)
	})

	t.Run("silent session past liveness timeout is implicitly closed", func(t *testing.T) {
		connected := trackerNow.Add(-2 * time.Hour)
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventConnect, connected, 0),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 1)
		assert.False(t, sessions[0].Active)
		assert.Equal(t, trackerNow, sessions[0].ClosedAt)
		assert.InDelta(t, 2.0, sessions[0].DurationHours(), 0.001)
	})

	t.Run("reconnect on the same connection ID starts a new session", func(t *testing.T) {
		first := trackerNow.Add(-3 * time.Hour)
		second := trackerNow.Add(-1 * time.Hour)
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventConnect, first, 0),
			sessionEvent("conn-1", types.SessionEventTool, first.Add(time.Minute), 10),
			sessionEvent("conn-1", types.SessionEventConnect, second, 0),
			sessionEvent("conn-1", types.SessionEventDisconnect, second.Add(time.Minute), 0),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 2)
	})

	t.Run("tool event without connect opens a session implicitly", func(t *testing.T) {
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventTool, trackerNow.Add(-5*time.Minute), 10),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 1)
		assert.Equal(t, 1, sessions[0].ToolExecutionCount)
	})

	t.Run("disconnect without connect is ignored", func(t *testing.T) {
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventDisconnect, trackerNow.Add(-5*time.Minute), 0),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		assert.Empty(t, sessions)
	})

	t.Run("independent connections do not interfere", func(t *testing.T) {
		events := []types.SessionEvent{
			sessionEvent("conn-1", types.SessionEventConnect, trackerNow.Add(-time.Hour), 0),
			sessionEvent("conn-2", types.SessionEventConnect, trackerNow.Add(-30*time.Minute), 0),
			sessionEvent("conn-1", types.SessionEventDisconnect, trackerNow.Add(-20*time.Minute), 0),
			sessionEvent("conn-2", types.SessionEventTool, trackerNow.Add(-time.Minute), 5),
		}

		sessions := analytics.BuildSessions(events, trackerNow, liveness)
		require.Len(t, sessions, 2)

		active := analytics.ActiveSessions(sessions)
		require.Len(t, active, 1)
		assert.Equal(t, "conn-2", active[0].ConnectionID)
	})
}
