package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/symone-ai/symone-admin/pkg/types"
)

// EventSource is the abstract append-only log the engine reads. The store
// implements it; tests substitute an in-memory fake.
type EventSource interface {
	// ListUsageEventsSince returns usage events at or after since, any order
	ListUsageEventsSince(ctx context.Context, since time.Time) ([]types.UsageEvent, error)

	// ListTeamUsageEventsSince returns one team's usage events at or after since
	ListTeamUsageEventsSince(ctx context.Context, teamID string, since time.Time) ([]types.UsageEvent, error)

	// ListSessionEventsSince returns session events at or after since, ordered
	// by timestamp within each connection ID
	ListSessionEventsSince(ctx context.Context, since time.Time) ([]types.SessionEvent, error)

	// HasSessionEvents reports whether session tracking has recorded anything
	// at all, ever. Distinguishes "feature not enabled" from "no data in window".
	HasSessionEvents(ctx context.Context) (bool, error)

	// TeamNames returns the display name for every known team ID
	TeamNames(ctx context.Context) (map[string]string, error)
}

// Service exposes the analytic operations. Each call reads one atomic config
// snapshot, is independently cancellable, and returns either a complete result
// or an error - never a partial one. Calls are pure over the event snapshot
// and safe to run concurrently; the semaphore only guards the event store
// against too many simultaneous full scans.
type Service struct {
	source EventSource
	config *ConfigHolder
	scans  *semaphore.Weighted

	// now is swappable for tests
	now func() time.Time
}

// NewService creates an analytics service over an event source
func NewService(source EventSource, config *ConfigHolder) *Service {
	return &Service{
		source: source,
		config: config,
		scans:  semaphore.NewWeighted(int64(config.Snapshot().MaxConcurrentScans)),
		now:    time.Now,
	}
}

// Config returns the current config snapshot
func (s *Service) Config() *Config {
	return s.config.Snapshot()
}

// SetNowFunc overrides the clock, for tests
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}

// acquireScan reserves a scan slot, respecting cancellation while waiting
func (s *Service) acquireScan(ctx context.Context) error {
	if err := s.scans.Acquire(ctx, 1); err != nil {
		return err
	}
	return nil
}

// GetUsageCosts aggregates per-team costs over the trailing window
func (s *Service) GetUsageCosts(ctx context.Context, windowDays, topN int) (*types.CostReport, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window_days must be positive, got %d", ErrInvalidArgument, windowDays)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidArgument, topN)
	}

	if err := s.acquireScan(ctx); err != nil {
		return nil, err
	}
	defer s.scans.Release(1)

	cfg := s.config.Snapshot()
	now := s.now().UTC()

	events, err := s.source.ListUsageEventsSince(ctx, now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, fmt.Errorf("list usage events: %w: %w", ErrDataSourceUnavailable, err)
	}

	names, err := s.source.TeamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w: %w", ErrDataSourceUnavailable, err)
	}

	report := AggregateCosts(events, names, now, windowDays, topN, cfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// GetTeamUserCosts splits one team's cost into per-user records plus the
// unattributed bucket
func (s *Service) GetTeamUserCosts(ctx context.Context, teamID string, windowDays, topN int) (*types.TeamUserCosts, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrInvalidArgument)
	}
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window_days must be positive, got %d", ErrInvalidArgument, windowDays)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidArgument, topN)
	}

	if err := s.acquireScan(ctx); err != nil {
		return nil, err
	}
	defer s.scans.Release(1)

	cfg := s.config.Snapshot()
	now := s.now().UTC()

	events, err := s.source.ListTeamUsageEventsSince(ctx, teamID, now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, fmt.Errorf("list team usage events: %w: %w", ErrDataSourceUnavailable, err)
	}

	result := ResolveUserCosts(teamID, events, now, windowDays, topN, cfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetZombieUsers reconstructs sessions over the analysis window and reports
// idle session groups. When session tracking has never recorded data, the
// report carries an in-band message instead of an empty-but-ambiguous list.
func (s *Service) GetZombieUsers(ctx context.Context, minSessionDays int, idleThresholdSeconds float64, topN int) (*types.ZombieReport, error) {
	if minSessionDays <= 0 {
		return nil, fmt.Errorf("%w: min_session_days must be positive, got %d", ErrInvalidArgument, minSessionDays)
	}
	if idleThresholdSeconds <= 0 {
		return nil, fmt.Errorf("%w: idle_threshold_seconds must be positive, got %v", ErrInvalidArgument, idleThresholdSeconds)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidArgument, topN)
	}

	if err := s.acquireScan(ctx); err != nil {
		return nil, err
	}
	defer s.scans.Release(1)

	cfg := s.config.Snapshot()
	now := s.now().UTC()

	enabled, err := s.source.HasSessionEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe session events: %w: %w", ErrDataSourceUnavailable, err)
	}
	if !enabled {
		return &types.ZombieReport{
			Zombies:         []types.ZombieCandidate{},
			Recommendations: []string{},
			Message:         NotEnabledMessage,
		}, nil
	}

	events, err := s.source.ListSessionEventsSince(ctx, now.AddDate(0, 0, -minSessionDays))
	if err != nil {
		return nil, fmt.Errorf("list session events: %w: %w", ErrDataSourceUnavailable, err)
	}

	names, err := s.source.TeamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w: %w", ErrDataSourceUnavailable, err)
	}

	sessions := BuildSessions(events, now, cfg.LivenessTimeout)
	report := DetectZombies(sessions, names, cfg.MinSessions, idleThresholdSeconds, cfg.MinZeroToolSessionSeconds, topN)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// GetActiveConnections lists connections that are currently open and within
// the liveness timeout
func (s *Service) GetActiveConnections(ctx context.Context) (*types.ActiveConnectionsReport, error) {
	if err := s.acquireScan(ctx); err != nil {
		return nil, err
	}
	defer s.scans.Release(1)

	cfg := s.config.Snapshot()
	now := s.now().UTC()

	events, err := s.source.ListSessionEventsSince(ctx, now.AddDate(0, 0, -cfg.DefaultWindowDays))
	if err != nil {
		return nil, fmt.Errorf("list session events: %w: %w", ErrDataSourceUnavailable, err)
	}

	names, err := s.source.TeamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w: %w", ErrDataSourceUnavailable, err)
	}

	active := ActiveSessions(BuildSessions(events, now, cfg.LivenessTimeout))

	connections := make([]types.ActiveConnection, 0, len(active))
	for _, sess := range active {
		connections = append(connections, types.ActiveConnection{
			ID:              sess.ConnectionID,
			TeamID:          sess.TeamID,
			TeamName:        names[sess.TeamID],
			ConnectedAt:     sess.ConnectedAt.UTC(),
			DurationMinutes: now.Sub(sess.ConnectedAt).Minutes(),
			ToolsExecuted:   sess.ToolExecutionCount,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &types.ActiveConnectionsReport{
		ActiveCount: len(connections),
		Connections: connections,
	}, nil
}

// GetOverview summarizes platform activity over the default window
func (s *Service) GetOverview(ctx context.Context) (*types.OverviewReport, error) {
	if err := s.acquireScan(ctx); err != nil {
		return nil, err
	}
	defer s.scans.Release(1)

	cfg := s.config.Snapshot()
	now := s.now().UTC()

	events, err := s.source.ListUsageEventsSince(ctx, now.AddDate(0, 0, -cfg.DefaultWindowDays))
	if err != nil {
		return nil, fmt.Errorf("list usage events: %w: %w", ErrDataSourceUnavailable, err)
	}

	names, err := s.source.TeamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list team names: %w: %w", ErrDataSourceUnavailable, err)
	}

	report := AggregateCosts(events, names, now, cfg.DefaultWindowDays, math.MaxInt, cfg)

	enabled, err := s.source.HasSessionEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe session events: %w: %w", ErrDataSourceUnavailable, err)
	}

	activeCount := 0
	if enabled {
		sessEvents, err := s.source.ListSessionEventsSince(ctx, now.AddDate(0, 0, -cfg.DefaultWindowDays))
		if err != nil {
			return nil, fmt.Errorf("list session events: %w: %w", ErrDataSourceUnavailable, err)
		}
		activeCount = len(ActiveSessions(BuildSessions(sessEvents, now, cfg.LivenessTimeout)))
	}

	totalSeconds := 0.0
	for _, team := range report.Teams {
		totalSeconds += team.TotalComputeSeconds
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &types.OverviewReport{
		TeamCount:           len(report.Teams),
		TotalRequests:       report.TotalRequests,
		TotalComputeSeconds: totalSeconds,
		TotalCost:           report.TotalCost,
		ActiveConnections:   activeCount,
		WindowDays:          cfg.DefaultWindowDays,
		CalculatedAt:        now,
	}, nil
}
