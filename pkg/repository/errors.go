package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyCode   = "23503"
	pgDuplicateKeyCode = "23505"
)

// MapError translates database errors to domain errors.
// sql.ErrNoRows and PostgreSQL foreign key violations (23503) map to
// notFoundErr: a child row that references a missing parent is reported as a
// missing parent. Unique violations (23505) map to duplicateErr. Other errors
// are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyCode:
			return notFoundErr
		case pgDuplicateKeyCode:
			return duplicateErr
		}
	}

	return err
}
