// Copyright (c) 2025 Neomantra Corp
//
// Dispatch ties the batch planner (cursor.go) to a schema-specific
// projector and streams results to a caller-supplied sink in bounded
// memory (spec.md §4.F, §5 "Memory: bounded by batch size, not by
// total result size"). It knows nothing about Postgres or DuckDB; the
// store subpackage supplies the Projector implementations that do.

package mbp

import "context"

// Projector executes one schema's projection query against a storage
// backend and decodes its rows into RecordEnvelopes. Implementations
// live in the store subpackage, one per record kind, each running
// against either backend through store.Querier, so this package stays
// free of any SQL or driver dependency (spec.md §7, "pluggable storage
// backend").
type Projector interface {
	// ExecuteBatch runs the query for the window from batch.Start to
	// windowEnd (whether windowEnd itself is included is the
	// projector's to decide: the OHLCV projector excludes it, the
	// others include it) and returns the decoded rows in the
	// projector's own order (none for mbp-1, ts_event for trade and
	// tbbo, bucket for ohlcv-*, ts_recv for bbo-*), along with the
	// (ticker, instrument_id) pairs observed in this batch (spec.md
	// §4.F, "symbol_map").
	ExecuteBatch(ctx context.Context, params RetrieveParams, batch Cursor, windowEnd int64) ([]RecordEnvelope, *SymbolMap, error)
}

// DefaultBatchSizeNs bounds a single dispatch batch's time span when
// the caller does not specify one. One hour of nanosecond-resolution
// range keeps a single batch's row count bounded for any instrument
// count this store expects to serve (spec.md §5, "Resource model").
const DefaultBatchSizeNs int64 = 3_600_000_000_000

// Dispatch validates params, then drives the batch planner against
// proj, invoking emit once per decoded record in order. It returns the
// accumulated symbol map across every batch and the first error from
// validation, query execution, decoding, or emit; ctx cancellation is
// checked between batches so a long-running scan can be cancelled
// without waiting for the range to exhaust (spec.md §5, "Cancellation
// & timeouts").
func Dispatch(ctx context.Context, proj Projector, params RetrieveParams, batchSizeNs int64, emit func(RecordEnvelope) error) (*SymbolMap, error) {
	symbols := NewSymbolMap()
	if err := params.Validate(); err != nil {
		return symbols, err
	}
	if batchSizeNs <= 0 {
		batchSizeNs = DefaultBatchSizeNs
	}

	cur := NewCursor(params)
	for !cur.Done() {
		select {
		case <-ctx.Done():
			return symbols, ctx.Err()
		default:
		}

		batch, windowEnd, final := cur.NextWindow(batchSizeNs)
		rows, batchSymbols, err := proj.ExecuteBatch(ctx, params, batch, windowEnd)
		if err != nil {
			return symbols, err
		}
		symbols.Merge(batchSymbols)
		for _, row := range rows {
			if err := emit(row); err != nil {
				return symbols, err
			}
		}
		if final {
			break
		}
		cur = batch.Advance(params.Schema, windowEnd)
	}
	return symbols, nil
}
