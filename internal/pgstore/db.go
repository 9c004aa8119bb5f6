// Package pgstore is the shared Postgres backend of the catalog service.
package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the interface for database operations.
// It is implemented by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements catalog.ItemStore and catalog.ListStore.
type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}
