package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// EventStore handles the append-only usage event log. Events are written once
// by the serving layer and only ever read back here.
type EventStore struct {
	pool *pgxpool.Pool
}

// Record appends a usage event
func (s *EventStore) Record(ctx context.Context, event *types.UsageEvent) error {
	query := `
		INSERT INTO usage_events (id, team_id, user_id, occurred_at, compute_seconds, tool_name, success)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		event.ID,
		event.TeamID,
		nullString(event.UserID),
		event.OccurredAt,
		event.ComputeSeconds,
		event.ToolName,
		event.Success,
	)

	if err != nil {
		return fmt.Errorf("record usage event: %w", err)
	}

	return nil
}

// ListSince returns all usage events at or after since, ordered by timestamp
func (s *EventStore) ListSince(ctx context.Context, since time.Time) ([]types.UsageEvent, error) {
	query := `
		SELECT id, team_id, user_id, occurred_at, compute_seconds, tool_name, success
		FROM usage_events
		WHERE occurred_at >= $1
		ORDER BY occurred_at ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list usage events: %w", err)
	}
	defer rows.Close()

	return scanUsageEvents(rows)
}

// ListTeamSince returns one team's usage events at or after since
func (s *EventStore) ListTeamSince(ctx context.Context, teamID string, since time.Time) ([]types.UsageEvent, error) {
	query := `
		SELECT id, team_id, user_id, occurred_at, compute_seconds, tool_name, success
		FROM usage_events
		WHERE team_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at ASC
	`

	rows, err := s.pool.Query(ctx, query, teamID, since)
	if err != nil {
		return nil, fmt.Errorf("list team usage events: %w", err)
	}
	defer rows.Close()

	return scanUsageEvents(rows)
}

// CountSince returns the number of usage events at or after since
func (s *EventStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM usage_events WHERE occurred_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage events: %w", err)
	}
	return count, nil
}

func scanUsageEvents(rows pgx.Rows) ([]types.UsageEvent, error) {
	events := make([]types.UsageEvent, 0)
	for rows.Next() {
		var ev types.UsageEvent
		var userID sql.NullString

		err := rows.Scan(
			&ev.ID,
			&ev.TeamID,
			&userID,
			&ev.OccurredAt,
			&ev.ComputeSeconds,
			&ev.ToolName,
			&ev.Success,
		)
		if err != nil {
			return nil, fmt.Errorf("scan usage event: %w", err)
		}

		if userID.Valid {
			ev.UserID = userID.String
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage events: %w", err)
	}

	return events, nil
}

// nullString maps an empty string to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
