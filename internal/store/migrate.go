package store

import (
	"context"
	"fmt"
)

// schema is applied idempotently on startup. The usage and session event
// tables are append-only; the engine never updates or deletes rows in them.
const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS usage_events (
	id              TEXT PRIMARY KEY,
	team_id         TEXT NOT NULL,
	user_id         TEXT,
	occurred_at     TIMESTAMPTZ NOT NULL,
	compute_seconds DOUBLE PRECISION NOT NULL CHECK (compute_seconds >= 0),
	tool_name       TEXT NOT NULL DEFAULT '',
	success         BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_usage_events_occurred_at ON usage_events (occurred_at);
CREATE INDEX IF NOT EXISTS idx_usage_events_team_occurred ON usage_events (team_id, occurred_at);

CREATE TABLE IF NOT EXISTS session_events (
	id               TEXT PRIMARY KEY,
	connection_id    TEXT NOT NULL,
	team_id          TEXT NOT NULL,
	user_id          TEXT,
	kind             TEXT NOT NULL CHECK (kind IN ('connect', 'tool', 'disconnect')),
	occurred_at      TIMESTAMPTZ NOT NULL,
	tool_name        TEXT,
	duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_session_events_occurred_at ON session_events (occurred_at);
CREATE INDEX IF NOT EXISTS idx_session_events_connection ON session_events (connection_id, occurred_at);

CREATE TABLE IF NOT EXISTS admin_users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id         TEXT PRIMARY KEY,
	admin_id   TEXT NOT NULL REFERENCES admin_users (id) ON DELETE CASCADE,
	token_hash TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_refresh_tokens_hash ON refresh_tokens (token_hash);
`

// Migrate applies the schema
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
