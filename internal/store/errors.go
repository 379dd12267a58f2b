package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested record is not found
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation conflicts with existing data
	ErrConflict = errors.New("conflict")
)

// pg error code for unique constraint violation
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation, possibly wrapped
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
