package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Classifiers for the database failures the storage layer translates into
// domain errors: sibling-name collisions, dangling parent references and
// plain missing rows.

// IsPgDuplicateError reports a unique index violation (SQLSTATE 23505),
// raised when an insert lands on an occupied (name, parent) slot.
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgNoRowsError reports a single-row query that matched nothing.
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports a foreign key violation (SQLSTATE 23503),
// raised when a row points at a parent that does not exist.
func IsPgForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
