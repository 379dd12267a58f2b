package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// AdminStore handles dashboard operator accounts
type AdminStore struct {
	pool *pgxpool.Pool
}

// Create creates a new admin account
func (s *AdminStore) Create(ctx context.Context, admin *types.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, name, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		admin.ID,
		admin.Email,
		admin.Name,
		admin.PasswordHash,
		admin.Role,
		admin.Active,
		admin.CreatedAt,
		admin.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create admin: %w", err)
	}

	return nil
}

// GetByID retrieves an admin by ID
func (s *AdminStore) GetByID(ctx context.Context, id string) (*types.AdminUser, error) {
	query := `
		SELECT id, email, name, password_hash, role, active, created_at, updated_at
		FROM admin_users
		WHERE id = $1
	`

	var admin types.AdminUser
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&admin.ID,
		&admin.Email,
		&admin.Name,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by id: %w", err)
	}

	return &admin, nil
}

// GetByEmail retrieves an admin by email
func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*types.AdminUser, error) {
	query := `
		SELECT id, email, name, password_hash, role, active, created_at, updated_at
		FROM admin_users
		WHERE email = $1
	`

	var admin types.AdminUser
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.Name,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by email: %w", err)
	}

	return &admin, nil
}

// List returns all admin accounts ordered by creation time
func (s *AdminStore) List(ctx context.Context) ([]types.AdminUser, error) {
	query := `
		SELECT id, email, name, password_hash, role, active, created_at, updated_at
		FROM admin_users
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := make([]types.AdminUser, 0)
	for rows.Next() {
		var admin types.AdminUser
		err := rows.Scan(
			&admin.ID,
			&admin.Email,
			&admin.Name,
			&admin.PasswordHash,
			&admin.Role,
			&admin.Active,
			&admin.CreatedAt,
			&admin.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}

	return admins, nil
}

// Update updates an admin account
func (s *AdminStore) Update(ctx context.Context, admin *types.AdminUser) error {
	admin.UpdatedAt = time.Now()

	query := `
		UPDATE admin_users
		SET email = $2, name = $3, password_hash = $4, role = $5, active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		admin.ID,
		admin.Email,
		admin.Name,
		admin.PasswordHash,
		admin.Role,
		admin.Active,
		admin.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CountActiveByRole returns the number of active admins holding a role
func (s *AdminStore) CountActiveByRole(ctx context.Context, role types.AdminRole) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admin_users WHERE role = $1 AND active = TRUE`, role,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count admins by role: %w", err)
	}
	return count, nil
}

// Delete removes an admin account
func (s *AdminStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
