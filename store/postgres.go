// Copyright (c) 2025 Neomantra Corp
//
// Postgres backend, grounded on Andrew50-peripheral's pgxpool.Pool
// wrapper (internal/data/conn.go: Conn{DB *pgxpool.Pool}) and the
// insert/retrieve shape of original_source's market_data.rs.

package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neomantra/mbp-go"
)

// PgStore is the Postgres-backed Querier.
type PgStore struct {
	Pool *pgxpool.Pool
}

// NewPgStore wraps an already-configured pgxpool.Pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{Pool: pool}
}

func (s *PgStore) Dialect() Dialect { return DialectPostgres }

type pgRows struct{ pgx.Rows }

func (r pgRows) Close() error {
	r.Rows.Close()
	return r.Rows.Err()
}

func (s *PgStore) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mbp.StorageError(err)
	}
	return pgRows{rows}, nil
}

func (s *PgStore) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := s.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mbp.StorageError(err)
	}
	return tag.RowsAffected(), nil
}

// InsertEvents bulk-inserts events via a two-table CopyFrom, pre-
// reserving `mbp.id` values from the sequence so the book-level rows
// can be copied in the same pass instead of round-tripping a
// RETURNING id per row (spec.md §4.C, "bulk insert path ... should
// avoid per-row round trips").
func (s *PgStore) InsertEvents(ctx context.Context, events []mbp.Event) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, mbp.StorageError(err)
	}
	defer tx.Rollback(ctx)

	var ids []int64
	err = tx.QueryRow(ctx,
		`SELECT array_agg(nextval('mbp_id_seq')) FROM generate_series(1, $1)`,
		len(events),
	).Scan(&ids)
	if err != nil {
		return 0, mbp.StorageError(err)
	}

	mbpRows := make([][]any, len(events))
	var levelRows [][]any
	for i, e := range events {
		id := ids[i]
		hash := mbp.ComputeOrderBookHash(e.Levels)
		mbpRows[i] = []any{
			id, e.InstrumentID, e.TsEvent, e.TsRecv, e.TsInDelta,
			e.Price, e.Size, byte(e.Action), byte(e.Side), e.Flags,
			e.Sequence, hash,
		}
		for depth, lv := range e.Levels {
			levelRows = append(levelRows, []any{
				id, depth, lv.BidPx, lv.BidSz, lv.BidCt, lv.AskPx, lv.AskSz, lv.AskCt,
			})
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"mbp"},
		[]string{"id", "instrument_id", "ts_event", "ts_recv", "ts_in_delta",
			"price", "size", "action", "side", "flags", "sequence", "order_book_hash"},
		pgx.CopyFromRows(mbpRows),
	)
	if err != nil {
		return 0, mbp.StorageError(err)
	}

	if len(levelRows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"bid_ask"},
			[]string{"mbp_id", "depth", "bid_px", "bid_sz", "bid_ct", "ask_px", "ask_sz", "ask_ct"},
			pgx.CopyFromRows(levelRows),
		)
		if err != nil {
			return 0, mbp.StorageError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, mbp.StorageError(err)
	}
	return int64(len(events)), nil
}
