package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// SessionEventStore handles connection lifecycle events. Ordering is
// guaranteed per connection ID, which is all session reconstruction needs.
type SessionEventStore struct {
	pool *pgxpool.Pool
}

// Record appends a session event
func (s *SessionEventStore) Record(ctx context.Context, event *types.SessionEvent) error {
	if !event.Kind.IsValid() {
		return fmt.Errorf("record session event: unknown kind %q", event.Kind)
	}

	query := `
		INSERT INTO session_events (id, connection_id, team_id, user_id, kind, occurred_at, tool_name, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		event.ID,
		event.ConnectionID,
		event.TeamID,
		nullString(event.UserID),
		event.Kind,
		event.OccurredAt,
		nullString(event.ToolName),
		event.DurationSeconds,
	)

	if err != nil {
		return fmt.Errorf("record session event: %w", err)
	}

	return nil
}

// ListSince returns session events at or after since, ordered by connection
// then timestamp so each connection's stream arrives in order. Timestamp ties
// break on lifecycle order so a disconnect never sorts before the event it
// follows.
func (s *SessionEventStore) ListSince(ctx context.Context, since time.Time) ([]types.SessionEvent, error) {
	query := `
		SELECT id, connection_id, team_id, user_id, kind, occurred_at, tool_name, duration_seconds
		FROM session_events
		WHERE occurred_at >= $1
		ORDER BY connection_id ASC, occurred_at ASC,
			CASE kind WHEN 'connect' THEN 0 WHEN 'tool' THEN 1 ELSE 2 END ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list session events: %w", err)
	}
	defer rows.Close()

	events := make([]types.SessionEvent, 0)
	for rows.Next() {
		var ev types.SessionEvent
		var userID, toolName sql.NullString

		err := rows.Scan(
			&ev.ID,
			&ev.ConnectionID,
			&ev.TeamID,
			&userID,
			&ev.Kind,
			&ev.OccurredAt,
			&toolName,
			&ev.DurationSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}

		if userID.Valid {
			ev.UserID = userID.String
		}
		if toolName.Valid {
			ev.ToolName = toolName.String
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}

	return events, nil
}

// HasAny reports whether any session event has ever been recorded. Used to
// tell "feature not enabled" apart from "no data in window".
func (s *SessionEventStore) HasAny(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM session_events)`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe session events: %w", err)
	}
	return exists, nil
}

// StaleOpenConnections returns connection IDs whose latest event is neither a
// disconnect nor newer than the cutoff. The janitor seals these with
// synthetic disconnects.
func (s *SessionEventStore) StaleOpenConnections(ctx context.Context, cutoff time.Time) ([]types.SessionEvent, error) {
	query := `
		SELECT DISTINCT ON (connection_id)
			id, connection_id, team_id, user_id, kind, occurred_at, tool_name, duration_seconds
		FROM session_events
		ORDER BY connection_id, occurred_at DESC,
			CASE kind WHEN 'disconnect' THEN 0 ELSE 1 END ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list latest session events: %w", err)
	}
	defer rows.Close()

	stale := make([]types.SessionEvent, 0)
	for rows.Next() {
		var ev types.SessionEvent
		var userID, toolName sql.NullString

		err := rows.Scan(
			&ev.ID,
			&ev.ConnectionID,
			&ev.TeamID,
			&userID,
			&ev.Kind,
			&ev.OccurredAt,
			&toolName,
			&ev.DurationSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}

		if userID.Valid {
			ev.UserID = userID.String
		}
		if toolName.Valid {
			ev.ToolName = toolName.String
		}

		if ev.Kind != types.SessionEventDisconnect && ev.OccurredAt.Before(cutoff) {
			stale = append(stale, ev)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}

	return stale, nil
}
