package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches a unique violation", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23505", ConstraintName: "admin_users_email_key"}
		assert.True(t, isUniqueViolation(err))
	})

	t.Run("matches when wrapped", func(t *testing.T) {
		err := fmt.Errorf("create admin: %w", &pgconn.PgError{Code: "23505"})
		assert.True(t, isUniqueViolation(err))
	})

	t.Run("ignores other pg errors", func(t *testing.T) {
		assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	})

	t.Run("ignores non-pg errors", func(t *testing.T) {
		assert.False(t, isUniqueViolation(errors.New("connection refused")))
		assert.False(t, isUniqueViolation(nil))
	})
}
