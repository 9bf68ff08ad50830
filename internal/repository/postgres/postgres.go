// Package postgres implements the repositories against PostgreSQL. Media
// stores its files as an embedded jsonb array; listing unnests that array
// with a lateral join, joins platforms and the content link table, and
// re-aggregates per media while computing the pre-pagination total with a
// window count in the same pass.
package postgres

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// it, which keeps the compilers testable without a live database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// parseID converts a string id into the bigint this backend keys on.
func parseID(resource, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidID(resource, id)
	}
	return n, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
