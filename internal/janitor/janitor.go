// Package janitor performs periodic cleanup of the event log and auth tables.
package janitor

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/symone-ai/symone-admin/internal/store"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// Config holds janitor configuration
type Config struct {
	CheckInterval       time.Duration
	StaleSessionTimeout time.Duration
	ExpiredTokenCleanup bool
}

// DefaultConfig returns default janitor configuration
func DefaultConfig() *Config {
	return &Config{
		CheckInterval:       5 * time.Minute,
		StaleSessionTimeout: 10 * time.Minute,
		ExpiredTokenCleanup: true,
	}
}

// Janitor performs periodic cleanup tasks
type Janitor struct {
	config  *Config
	store   *store.Store
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewJanitor creates a new janitor instance
func NewJanitor(config *Config, st *store.Store) *Janitor {
	if config == nil {
		config = DefaultConfig()
	}

	return &Janitor{
		config:  config,
		store:   st,
		running: false,
	}
}

// Start starts the janitor loop
func (j *Janitor) Start(ctx context.Context) error {
	j.ctx, j.cancel = context.WithCancel(ctx)
	j.running = true

	log.Printf("Janitor starting (check_interval=%s)", j.config.CheckInterval)

	// Run immediately on start
	j.run()

	// Start periodic loop
	ticker := time.NewTicker(j.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			log.Printf("Janitor shutting down")
			return j.ctx.Err()

		case <-ticker.C:
			j.run()
		}
	}
}

// Stop stops the janitor gracefully
func (j *Janitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.running = false
}

// run performs all cleanup tasks
func (j *Janitor) run() {
	ctx := context.Background()

	if err := j.closeStaleSessions(ctx); err != nil {
		log.Printf("Error closing stale sessions: %v", err)
	}

	if j.config.ExpiredTokenCleanup {
		if err := j.cleanupExpiredTokens(ctx); err != nil {
			log.Printf("Error cleaning up expired refresh tokens: %v", err)
		}
	}
}

// closeStaleSessions finds connections whose event stream has no disconnect
// and no activity past the stale timeout, and appends a synthetic disconnect
// row stamped at the connection's last activity. The event log stays
// append-only; nothing is rewritten.
func (j *Janitor) closeStaleSessions(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.config.StaleSessionTimeout)

	stale, err := j.store.SessionEvents.StaleOpenConnections(ctx, cutoff)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	log.Printf("Found %d stale open connections", len(stale))

	for _, last := range stale {
		disconnect := syntheticDisconnect(last)

		if err := j.store.SessionEvents.Record(ctx, disconnect); err != nil {
			log.Printf("Failed to close stale connection %s: %v", last.ConnectionID, err)
			continue
		}

		log.Printf("Closed stale connection %s (last activity %s)",
			last.ConnectionID, last.OccurredAt.Format(time.RFC3339))
	}

	return nil
}

// syntheticDisconnect builds the disconnect row that seals a stale stream.
// Stamped strictly after the connection's last real event: an equal timestamp
// would tie with that event under per-connection ordering, letting the
// disconnect sort ahead of it and leave the stream looking open.
func syntheticDisconnect(last types.SessionEvent) *types.SessionEvent {
	return &types.SessionEvent{
		ID:           uuid.New().String(),
		ConnectionID: last.ConnectionID,
		TeamID:       last.TeamID,
		UserID:       last.UserID,
		Kind:         types.SessionEventDisconnect,
		OccurredAt:   last.OccurredAt.Add(time.Millisecond),
	}
}

// cleanupExpiredTokens removes expired refresh tokens
func (j *Janitor) cleanupExpiredTokens(ctx context.Context) error {
	count, err := j.store.RefreshTokens.DeleteExpired(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		log.Printf("Cleaned up %d expired refresh tokens", count)
	}

	return nil
}
