package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// RefreshTokenStore handles refresh token database operations
type RefreshTokenStore struct {
	pool *pgxpool.Pool
}

// Create creates a new refresh token
func (s *RefreshTokenStore) Create(ctx context.Context, token *types.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, admin_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		token.ID,
		token.AdminID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

// GetByTokenHash retrieves a refresh token by its hash
func (s *RefreshTokenStore) GetByTokenHash(ctx context.Context, tokenHash string) (*types.RefreshToken, error) {
	query := `
		SELECT id, admin_id, token_hash, expires_at, created_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL
	`

	var token types.RefreshToken
	err := s.pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.AdminID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.RevokedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	if token.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("refresh token expired")
	}

	return &token, nil
}

// Revoke revokes a refresh token
func (s *RefreshTokenStore) Revoke(ctx context.Context, tokenHash string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`

	result, err := s.pool.Exec(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RevokeAllForAdmin revokes every live token for one admin
func (s *RefreshTokenStore) RevokeAllForAdmin(ctx context.Context, adminID string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE admin_id = $1 AND revoked_at IS NULL
	`

	if _, err := s.pool.Exec(ctx, query, adminID); err != nil {
		return fmt.Errorf("revoke refresh tokens for admin: %w", err)
	}
	return nil
}

// DeleteExpired removes tokens past their expiry
func (s *RefreshTokenStore) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < NOW()`,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return int(result.RowsAffected()), nil
}
