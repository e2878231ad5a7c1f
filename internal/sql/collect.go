package sql

import (
	"github.com/jackc/pgx/v5"
)

// CollectOneRow wraps the upstream pgx function of the same name, converting
// postgres errors into domain errors.
func CollectOneRow[T any](rows pgx.Rows, fn pgx.RowToFunc[T]) (T, error) {
	result, err := pgx.CollectOneRow(rows, fn)
	if err != nil {
		return result, toError(err)
	}
	return result, nil
}

// CollectRows wraps the upstream pgx function of the same name, converting
// postgres errors into domain errors.
func CollectRows[T any](rows pgx.Rows, fn pgx.RowToFunc[T]) ([]T, error) {
	result, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, toError(err)
	}
	return result, nil
}
