package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/symone-ai/symone-admin/internal/analytics"
	"github.com/symone-ai/symone-admin/internal/api"
	"github.com/symone-ai/symone-admin/internal/export"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// stubSource is a canned in-memory event source for handler tests
type stubSource struct {
	usage    []types.UsageEvent
	sessions []types.SessionEvent
	names    map[string]string
	tracking bool
	err      error
}

func (s *stubSource) ListUsageEventsSince(ctx context.Context, since time.Time) ([]types.UsageEvent, error) {
	return s.usage, s.err
}

func (s *stubSource) ListTeamUsageEventsSince(ctx context.Context, teamID string, since time.Time) ([]types.UsageEvent, error) {
	var out []types.UsageEvent
	for _, ev := range s.usage {
		if ev.TeamID == teamID {
			out = append(out, ev)
		}
	}
	return out, s.err
}

func (s *stubSource) ListSessionEventsSince(ctx context.Context, since time.Time) ([]types.SessionEvent, error) {
	return s.sessions, s.err
}

func (s *stubSource) HasSessionEvents(ctx context.Context) (bool, error) {
	return s.tracking, s.err
}

func (s *stubSource) TeamNames(ctx context.Context) (map[string]string, error) {
	return s.names, s.err
}

func newTestHandler(t *testing.T, source *stubSource) *api.AnalyticsHandler {
	t.Helper()

	holder := analytics.NewConfigHolder(analytics.DefaultConfig())
	service := analytics.NewService(source, holder)

	exporter, err := export.NewUploader(context.Background(), "", "")
	require.NoError(t, err)

	return api.NewAnalyticsHandler(service, exporter)
}

func doRequest(t *testing.T, handler echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = api.NewValidator()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestAnalyticsHandler_GetCosts(t *testing.T) {
	source := &stubSource{
		usage: []types.UsageEvent{
			{ID: "evt_1", TeamID: "team_a", UserID: "user_1", OccurredAt: time.Now().UTC(), ComputeSeconds: 400, ToolName: "search", Success: true},
			{ID: "evt_2", TeamID: "team_a", UserID: "user_2", OccurredAt: time.Now().UTC(), ComputeSeconds: 200, ToolName: "search", Success: true},
		},
		names: map[string]string{"team_a": "Team A"},
	}

	t.Run("returns cost report", func(t *testing.T) {
		handler := newTestHandler(t, source)
		rec := doRequest(t, handler.GetCosts, "/api/v1/analytics/costs?days=30&top=10")

		require.Equal(t, http.StatusOK, rec.Code)

		var report types.CostReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, 2, report.TotalRequests)
		assert.InDelta(t, 0.06, report.TotalCost, 1e-9)
		require.Len(t, report.Teams, 1)
		assert.Equal(t, "Team A", report.Teams[0].TeamName)
	})

	t.Run("rejects non-positive window", func(t *testing.T) {
		handler := newTestHandler(t, source)
		rec := doRequest(t, handler.GetCosts, "/api/v1/analytics/costs?days=-1")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps source failure to 503", func(t *testing.T) {
		handler := newTestHandler(t, &stubSource{err: errors.New("connection refused")})
		rec := doRequest(t, handler.GetCosts, "/api/v1/analytics/costs")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("rejects unparseable params instead of defaulting", func(t *testing.T) {
		handler := newTestHandler(t, source)

		rec := doRequest(t, handler.GetCosts, "/api/v1/analytics/costs?days=soon")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(t, handler.GetCosts, "/api/v1/analytics/costs?top=lots")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("absent params use defaults", func(t *testing.T) {
		handler := newTestHandler(t, source)
		rec := doRequest(t, handler.GetCosts, "/api/v1/analytics/costs")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAnalyticsHandler_GetTeamUserCosts(t *testing.T) {
	source := &stubSource{
		usage: []types.UsageEvent{
			{ID: "evt_1", TeamID: "team_a", UserID: "user_1", OccurredAt: time.Now().UTC(), ComputeSeconds: 300, ToolName: "search", Success: true},
			{ID: "evt_2", TeamID: "team_a", UserID: "", OccurredAt: time.Now().UTC(), ComputeSeconds: 100, ToolName: "search", Success: true},
		},
		names: map[string]string{"team_a": "Team A"},
	}

	t.Run("splits team cost per user with unattributed bucket", func(t *testing.T) {
		handler := newTestHandler(t, source)

		e := echo.New()
		e.Validator = api.NewValidator()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/teams/team_a/users", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("team_a")

		require.NoError(t, handler.GetTeamUserCosts(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var result types.TeamUserCosts
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "team_a", result.TeamID)
		require.Len(t, result.Users, 1)
		assert.Equal(t, 1, result.Unattributed.RequestCount)
		assert.InDelta(t, 0.01, result.Unattributed.EstimatedCost, 1e-9)
	})

	t.Run("rejects missing team id", func(t *testing.T) {
		handler := newTestHandler(t, source)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/teams//users", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, handler.GetTeamUserCosts(e.NewContext(req, rec)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAnalyticsHandler_GetZombies(t *testing.T) {
	t.Run("reports tracking not enabled in band", func(t *testing.T) {
		handler := newTestHandler(t, &stubSource{tracking: false})
		rec := doRequest(t, handler.GetZombies, "/api/v1/analytics/zombies")

		require.Equal(t, http.StatusOK, rec.Code)

		var report types.ZombieReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, analytics.NotEnabledMessage, report.Message)
		assert.Empty(t, report.Zombies)
	})

	t.Run("rejects unparseable idle threshold", func(t *testing.T) {
		handler := newTestHandler(t, &stubSource{tracking: true})
		rec := doRequest(t, handler.GetZombies, "/api/v1/analytics/zombies?idle_threshold=high")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns zombie report when tracking enabled", func(t *testing.T) {
		handler := newTestHandler(t, &stubSource{
			tracking: true,
			names:    map[string]string{"team_a": "Team A"},
		})
		rec := doRequest(t, handler.GetZombies, "/api/v1/analytics/zombies?days=7&idle_threshold=300&top=20")

		require.Equal(t, http.StatusOK, rec.Code)

		var report types.ZombieReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Empty(t, report.Message)
	})
}

func TestAnalyticsHandler_GetOverview(t *testing.T) {
	source := &stubSource{
		usage: []types.UsageEvent{
			{ID: "evt_1", TeamID: "team_a", UserID: "user_1", OccurredAt: time.Now().UTC(), ComputeSeconds: 100, ToolName: "search", Success: true},
		},
		names:    map[string]string{"team_a": "Team A"},
		tracking: true,
	}

	handler := newTestHandler(t, source)
	rec := doRequest(t, handler.GetOverview, "/api/v1/analytics/overview")

	require.Equal(t, http.StatusOK, rec.Code)

	var report types.OverviewReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TeamCount)
	assert.Equal(t, 1, report.TotalRequests)
}

func TestAnalyticsHandler_Export(t *testing.T) {
	t.Run("rejects when export is not configured", func(t *testing.T) {
		handler := newTestHandler(t, &stubSource{})

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/export", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, handler.Export(e.NewContext(req, rec)))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
