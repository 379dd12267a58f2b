package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// TeamStore handles tenant team records
type TeamStore struct {
	pool *pgxpool.Pool
}

// GetByID retrieves a team by ID
func (s *TeamStore) GetByID(ctx context.Context, id string) (*types.Team, error) {
	query := `
		SELECT id, name, created_at
		FROM teams
		WHERE id = $1
	`

	var team types.Team
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team by id: %w", err)
	}

	return &team, nil
}

// List returns all teams ordered by name
func (s *TeamStore) List(ctx context.Context) ([]types.Team, error) {
	query := `
		SELECT id, name, created_at
		FROM teams
		ORDER BY name ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]types.Team, 0)
	for rows.Next() {
		var team types.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}

	return teams, nil
}

// NamesByID returns the display name for every team
func (s *TeamStore) NamesByID(ctx context.Context) (map[string]string, error) {
	teams, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
	}
	return names, nil
}
