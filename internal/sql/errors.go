package sql

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leg100/console/internal"
)

// toError maps a postgres error to a console domain error, or returns the
// error unchanged if there is no mapping.
func toError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return internal.ErrResourceNotFound
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case "23505": // unique violation
			return internal.ErrResourceAlreadyExists
		case "23503": // foreign key violation
			return &ForeignKeyError{PgError: pgErr}
		}
	}
	return err
}

// ForeignKeyError occurs when there is a foreign key violation.
type ForeignKeyError struct {
	*pgconn.PgError
}

func (e *ForeignKeyError) Error() string {
	return e.Detail
}
