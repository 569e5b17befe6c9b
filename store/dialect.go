// Copyright (c) 2025 Neomantra Corp
//
// Dialect isolates the handful of SQL differences between the two
// supported storage backends (spec.md §7, "pluggable storage
// backend"): Postgres via jackc/pgx/v5 and in-process DuckDB via
// duckdb-go/v2. Everything else — table shape, projector logic, row
// decoding — is shared.

package store

import (
	"fmt"
	"strings"
)

// Dialect identifies which backend a Querier talks to.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectDuckDB
)

// Placeholder returns the positional bind-parameter marker for the nth
// (1-indexed) argument: "$n" for Postgres, "?" for DuckDB.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// InList builds the "(p1, p2, ...)" operand of an IN clause for n
// values, using dialect-correct placeholders starting at argOffset+1.
func (d Dialect) InList(argOffset, n int) string {
	ph := make([]string, n)
	for i := 0; i < n; i++ {
		ph[i] = d.Placeholder(argOffset + i + 1)
	}
	return "(" + strings.Join(ph, ", ") + ")"
}
