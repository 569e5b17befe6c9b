// Copyright (c) 2025 Neomantra Corp
//
// DuckDB backend, the in-process alternative to Postgres (spec.md §7,
// "pluggable storage backend" — the same projector and decode code
// must run against either). duckdb-go/v2 ships a database/sql driver,
// so this wraps *sql.DB/*sql.Tx rather than a bespoke client.

package store

import (
	"context"
	"database/sql"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/neomantra/mbp-go"
)

// DuckStore is the DuckDB-backed Querier, running against an
// in-process database (spec.md "Design Notes": DuckDB is the
// single-process, embedded alternative to a Postgres deployment).
type DuckStore struct {
	DB *sql.DB
}

// OpenDuckStore opens (or creates) a DuckDB database file. Pass ":memory:"
// for a purely in-process, non-persisted instance — the common case for
// tests (spec.md's Testable Properties scenarios run against this path).
func OpenDuckStore(path string) (*DuckStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, mbp.StorageError(err)
	}
	return &DuckStore{DB: db}, nil
}

func (s *DuckStore) Dialect() Dialect { return DialectDuckDB }

func (s *DuckStore) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mbp.StorageError(err)
	}
	return rows, nil
}

func (s *DuckStore) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mbp.StorageError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mbp.StorageError(err)
	}
	return n, nil
}

// InsertEvents bulk-inserts inside a single transaction. DuckDB's
// database/sql driver has no CopyFrom analogue exposed through the
// standard interface, so the fast path here is two single-row prepared
// INSERT statements (header, then levels) reused across all rows,
// executed once per row (spec.md §4.C, "bulk insert").
//
// Each row's id comes from its own nextval('mbp_id_seq') call rather
// than one nextval() plus an arithmetic offset — a sequence's nextval
// is atomic per call, so this stays correct under concurrent
// InsertEvents calls against the same DuckStore, unlike reserving a
// single value and assuming the following n-1 values are uncontested.
func (s *DuckStore) InsertEvents(ctx context.Context, events []mbp.Event) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, mbp.StorageError(err)
	}
	defer tx.Rollback()

	ids := make([]int64, len(events))
	for i := range events {
		if err := tx.QueryRowContext(ctx, `SELECT nextval('mbp_id_seq')`).Scan(&ids[i]); err != nil {
			return 0, mbp.StorageError(err)
		}
	}

	mbpStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mbp (id, instrument_id, ts_event, ts_recv, ts_in_delta, price, size, action, side, flags, sequence, order_book_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, mbp.StorageError(err)
	}
	defer mbpStmt.Close()

	levelStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bid_ask (mbp_id, depth, bid_px, bid_sz, bid_ct, ask_px, ask_sz, ask_ct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, mbp.StorageError(err)
	}
	defer levelStmt.Close()

	for i, e := range events {
		id := ids[i]
		hash := mbp.ComputeOrderBookHash(e.Levels)
		if _, err := mbpStmt.ExecContext(ctx,
			id, e.InstrumentID, e.TsEvent, e.TsRecv, e.TsInDelta,
			e.Price, e.Size, byte(e.Action), byte(e.Side), e.Flags, e.Sequence, hash,
		); err != nil {
			return 0, mbp.StorageError(err)
		}
		for depth, lv := range e.Levels {
			if _, err := levelStmt.ExecContext(ctx,
				id, depth, lv.BidPx, lv.BidSz, lv.BidCt, lv.AskPx, lv.AskSz, lv.AskCt,
			); err != nil {
				return 0, mbp.StorageError(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, mbp.StorageError(err)
	}
	return int64(len(events)), nil
}
