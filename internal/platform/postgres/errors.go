package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/userstore/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// duplicateDatabaseCode is returned by CREATE DATABASE when the database exists
	duplicateDatabaseCode = "42P04"
)

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
// This is how a duplicate username is detected on insert.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// isDuplicateDatabase checks if CREATE DATABASE lost a race with another process.
func isDuplicateDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == duplicateDatabaseCode
}

// MapError maps a PostgreSQL error from an operation on username to the
// normalized store error. Unique violations become conflicts; everything else
// is a backend failure carrying the operation name.
func MapError(err error, op string, username string) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return store.Conflict(username)
	}
	return store.Backend(store.EnginePostgres, fmt.Sprintf("%s %s", op, username), err)
}
