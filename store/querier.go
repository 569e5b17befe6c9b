// Copyright (c) 2025 Neomantra Corp

package store

import (
	"context"

	"github.com/neomantra/mbp-go"
)

// Rows is the minimal result-set surface this package needs. pgx.Rows
// (Postgres) satisfies it through the pgRows adapter in postgres.go;
// database/sql.Rows (DuckDB, via duckdb-go/v2's driver) satisfies it
// directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Querier is the storage-backend abstraction every projector and the
// insert path execute against (spec.md §7). A *PgStore and *DuckStore
// both implement it; nothing above this package knows which one it
// was handed.
type Querier interface {
	// Dialect reports which SQL variant to generate.
	Dialect() Dialect
	// Query executes a read query and returns its rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	// Exec executes a statement with no result rows, returning the
	// number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	// InsertEvents bulk-inserts events for one or more instruments
	// using the backend's fastest available path (spec.md §4.C, "bulk
	// insert"). Returns the number of event rows inserted.
	InsertEvents(ctx context.Context, events []mbp.Event) (int64, error)
}
