package domain

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by writes that target a row the caller does not own
	// or that does not exist. Reads return (nil, nil) instead.
	ErrNotFound  = errors.New("not found")
	// ErrDuplicate maps a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate")
	// ErrInUse maps a foreign-key violation on delete.
	ErrInUse     = errors.New("in use")
)

// IsUniqueViolation reports whether err is a Postgres unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a Postgres foreign_key_violation (23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// NullIfEmpty turns "" into a SQL NULL argument.
func NullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
