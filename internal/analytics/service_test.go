package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/symone-ai/symone-admin/internal/analytics"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// fakeSource is an in-memory EventSource for service tests
type fakeSource struct {
	usage    []types.UsageEvent
	sessions []types.SessionEvent
	names    map[string]string
	err      error

	// trackingErr fails only the session tracking check
	trackingErr error
}

func (f *fakeSource) ListUsageEventsSince(_ context.Context, since time.Time) ([]types.UsageEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.UsageEvent, 0)
	for _, ev := range f.usage {
		if !ev.OccurredAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeSource) ListTeamUsageEventsSince(ctx context.Context, teamID string, since time.Time) ([]types.UsageEvent, error) {
	all, err := f.ListUsageEventsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	out := make([]types.UsageEvent, 0)
	for _, ev := range all {
		if ev.TeamID == teamID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeSource) ListSessionEventsSince(_ context.Context, since time.Time) ([]types.SessionEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.SessionEvent, 0)
	for _, ev := range f.sessions {
		if !ev.OccurredAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeSource) HasSessionEvents(_ context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.trackingErr != nil {
		return false, f.trackingErr
	}
	return len(f.sessions) > 0, nil
}

func (f *fakeSource) TeamNames(_ context.Context) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

var serviceNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, source *fakeSource) *analytics.Service {
	t.Helper()
	svc := analytics.NewService(source, analytics.NewConfigHolder(analytics.DefaultConfig()))
	svc.SetNowFunc(func() time.Time { return serviceNow })
	return svc
}

func TestService_GetUsageCosts(t *testing.T) {
	t.Run("rejects non-positive arguments", func(t *testing.T) {
		svc := newTestService(t, &fakeSource{})

		_, err := svc.GetUsageCosts(context.Background(), 0, 20)
		assert.ErrorIs(t, err, analytics.ErrInvalidArgument)

		_, err = svc.GetUsageCosts(context.Background(), 30, -1)
		assert.ErrorIs(t, err, analytics.ErrInvalidArgument)
	})

	t.Run("surfaces store failure as data source unavailable", func(t *testing.T) {
		svc := newTestService(t, &fakeSource{err: errors.New("connection refused")})

		_, err := svc.GetUsageCosts(context.Background(), 30, 20)
		assert.ErrorIs(t, err, analytics.ErrDataSourceUnavailable)
	})

	t.Run("aggregates in UTC", func(t *testing.T) {
		source := &fakeSource{
			usage: []types.UsageEvent{
				usageEvent("team-a", "u1", 200, serviceNow.Add(-time.Hour)),
			},
			names: map[string]string{"team-a": "Alpha"},
		}
		svc := newTestService(t, source)

		report, err := svc.GetUsageCosts(context.Background(), 30, 20)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, report.CalculatedAt.Location())
		require.Len(t, report.Teams, 1)
		assert.Equal(t, "Alpha", report.Teams[0].TeamName)
	})

	t.Run("cancelled context yields no result", func(t *testing.T) {
		svc := newTestService(t, &fakeSource{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := svc.GetUsageCosts(ctx, 30, 20)
		assert.Nil(t, report)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestService_GetTeamUserCosts(t *testing.T) {
	t.Run("requires a team ID", func(t *testing.T) {
		svc := newTestService(t, &fakeSource{})

		_, err := svc.GetTeamUserCosts(context.Background(), "", 30, 20)
		assert.ErrorIs(t, err, analytics.ErrInvalidArgument)
	})

	t.Run("returns the partition for one team", func(t *testing.T) {
		source := &fakeSource{
			usage: []types.UsageEvent{
				usageEvent("team-a", "u1", 200, serviceNow.Add(-time.Hour)),
				usageEvent("team-a", "", 150, serviceNow.Add(-time.Hour)),
			},
			names: map[string]string{"team-a": "Alpha"},
		}
		svc := newTestService(t, source)

		result, err := svc.GetTeamUserCosts(context.Background(), "team-a", 30, 20)
		require.NoError(t, err)
		assert.Equal(t, "team-a", result.TeamID)
		require.Len(t, result.Users, 1)
		assert.Equal(t, 1, result.Unattributed.RequestCount)
	})
}

func TestService_GetZombieUsers(t *testing.T) {
	t.Run("empty session source reports not enabled", func(t *testing.T) {
		svc := newTestService(t, &fakeSource{})

		report, err := svc.GetZombieUsers(context.Background(), 7, 300, 20)
		require.NoError(t, err)
		assert.Equal(t, analytics.NotEnabledMessage, report.Message)
		assert.Empty(t, report.Zombies)
	})

	t.Run("no zombies found is distinguishable from no data", func(t *testing.T) {
		connected := serviceNow.Add(-time.Hour)
		source := &fakeSource{
			sessions: []types.SessionEvent{
				{ConnectionID: "c1", TeamID: "team-a", UserID: "u1", Kind: types.SessionEventConnect, OccurredAt: connected},
				{ConnectionID: "c1", TeamID: "team-a", UserID: "u1", Kind: types.SessionEventTool, OccurredAt: connected.Add(time.Minute), DurationSeconds: 3500},
				{ConnectionID: "c1", TeamID: "team-a", UserID: "u1", Kind: types.SessionEventDisconnect, OccurredAt: connected.Add(59 * time.Minute)},
			},
			names: map[string]string{"team-a": "Alpha"},
		}
		svc := newTestService(t, source)

		report, err := svc.GetZombieUsers(context.Background(), 7, 300, 20)
		require.NoError(t, err)
		assert.Empty(t, report.Message)
		assert.Empty(t, report.Zombies)
	})

	t.Run("detects a zero-tool group past min sessions", func(t *testing.T) {
		events := make([]types.SessionEvent, 0)
		for i := 0; i < 3; i++ {
			connected := serviceNow.Add(-time.Duration(i+2) * time.Hour)
			connID := types.GenerateConnectionID()
			events = append(events,
				types.SessionEvent{ConnectionID: connID, TeamID: "team-a", UserID: "u1", Kind: types.SessionEventConnect, OccurredAt: connected},
				types.SessionEvent{ConnectionID: connID, TeamID: "team-a", UserID: "u1", Kind: types.SessionEventDisconnect, OccurredAt: connected.Add(time.Hour)},
			)
		}
		source := &fakeSource{sessions: events, names: map[string]string{"team-a": "Alpha"}}
		svc := newTestService(t, source)

		report, err := svc.GetZombieUsers(context.Background(), 7, 300, 20)
		require.NoError(t, err)
		require.Len(t, report.Zombies, 1)
		assert.Nil(t, report.Zombies[0].IdleRatio)
		assert.Equal(t, 3, report.Zombies[0].SessionCount)
		assert.NotEmpty(t, report.Recommendations)
	})

	t.Run("rejects non-positive parameters", func(t *testing.T) {
		svc := newTestService(t, &fakeSource{})

		_, err := svc.GetZombieUsers(context.Background(), -7, 300, 20)
		assert.ErrorIs(t, err, analytics.ErrInvalidArgument)

		_, err = svc.GetZombieUsers(context.Background(), 7, 0, 20)
		assert.ErrorIs(t, err, analytics.ErrInvalidArgument)
	})
}

func TestService_GetActiveConnections(t *testing.T) {
	t.Run("lists only live connections", func(t *testing.T) {
		source := &fakeSource{
			sessions: []types.SessionEvent{
				// Open and recently active
				{ConnectionID: "c1", TeamID: "team-a", UserID: "u1", Kind: types.SessionEventConnect, OccurredAt: serviceNow.Add(-30 * time.Minute)},
				{ConnectionID: "c1", TeamID: "team-a", UserID: "u1", Kind: types.SessionEventTool, OccurredAt: serviceNow.Add(-time.Minute), DurationSeconds: 5},
				// Disconnected
				{ConnectionID: "c2", TeamID: "team-a", UserID: "u2", Kind: types.SessionEventConnect, OccurredAt: serviceNow.Add(-2 * time.Hour)},
				{ConnectionID: "c2", TeamID: "team-a", UserID: "u2", Kind: types.SessionEventDisconnect, OccurredAt: serviceNow.Add(-time.Hour)},
				// Silent past the liveness timeout
				{ConnectionID: "c3", TeamID: "team-a", UserID: "u3", Kind: types.SessionEventConnect, OccurredAt: serviceNow.Add(-3 * time.Hour)},
			},
			names: map[string]string{"team-a": "Alpha"},
		}
		svc := newTestService(t, source)

		report, err := svc.GetActiveConnections(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.ActiveCount)
		require.Len(t, report.Connections, 1)

		conn := report.Connections[0]
		assert.Equal(t, "c1", conn.ID)
		assert.Equal(t, "Alpha", conn.TeamName)
		assert.InDelta(t, 30, conn.DurationMinutes, 0.1)
		assert.Equal(t, 1, conn.ToolsExecuted)
	})

	t.Run("empty source yields an empty report", func(t *testing.T) {
		svc := newTestService(t, &fakeSource{})

		report, err := svc.GetActiveConnections(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, report.ActiveCount)
		assert.Empty(t, report.Connections)
	})
}

func TestService_GetOverview(t *testing.T) {
	t.Run("summarizes activity over the default window", func(t *testing.T) {
		source := &fakeSource{
			usage: []types.UsageEvent{
				usageEvent("team-a", "u1", 200, serviceNow.Add(-time.Hour)),
				usageEvent("team-b", "", 100, serviceNow.Add(-time.Hour)),
			},
			names: map[string]string{"team-a": "Alpha", "team-b": "Beta"},
		}
		svc := newTestService(t, source)

		report, err := svc.GetOverview(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, report.TeamCount)
		assert.Equal(t, 2, report.TotalRequests)
		assert.InDelta(t, 300, report.TotalComputeSeconds, 1e-9)
		assert.InDelta(t, 0.03, report.TotalCost, 1e-9)
		assert.Equal(t, 30, report.WindowDays)
	})

	t.Run("surfaces session tracking check failure", func(t *testing.T) {
		source := &fakeSource{
			usage: []types.UsageEvent{
				usageEvent("team-a", "u1", 200, serviceNow.Add(-time.Hour)),
			},
			names:       map[string]string{"team-a": "Alpha"},
			trackingErr: errors.New("connection refused"),
		}
		svc := newTestService(t, source)

		report, err := svc.GetOverview(context.Background())
		assert.Nil(t, report)
		assert.ErrorIs(t, err, analytics.ErrDataSourceUnavailable)
	})
}
