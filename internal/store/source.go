package store

import (
	"context"
	"time"

	"github.com/symone-ai/symone-admin/pkg/types"
)

// The Store doubles as the analytics engine's event source. Thin delegation
// keeps the engine depending on an interface rather than on pgx.

// ListUsageEventsSince implements analytics.EventSource
func (s *Store) ListUsageEventsSince(ctx context.Context, since time.Time) ([]types.UsageEvent, error) {
	return s.Events.ListSince(ctx, since)
}

// ListTeamUsageEventsSince implements analytics.EventSource
func (s *Store) ListTeamUsageEventsSince(ctx context.Context, teamID string, since time.Time) ([]types.UsageEvent, error) {
	return s.Events.ListTeamSince(ctx, teamID, since)
}

// ListSessionEventsSince implements analytics.EventSource
func (s *Store) ListSessionEventsSince(ctx context.Context, since time.Time) ([]types.SessionEvent, error) {
	return s.SessionEvents.ListSince(ctx, since)
}

// HasSessionEvents implements analytics.EventSource
func (s *Store) HasSessionEvents(ctx context.Context) (bool, error) {
	return s.SessionEvents.HasAny(ctx)
}

// TeamNames implements analytics.EventSource
func (s *Store) TeamNames(ctx context.Context) (map[string]string, error) {
	return s.Teams.NamesByID(ctx)
}
