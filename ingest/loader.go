// Copyright (c) 2025 Neomantra Corp
//
// Bulk ingest orchestration: scan an NDJSON event stream and hand it
// to a store.Querier in fixed-size batches (spec.md §4.C, "bulk
// insert"). Each run gets a google/uuid job id for log correlation,
// following the pack's convention of tagging long-running operations
// with a UUID rather than a sequential counter.

package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neomantra/mbp-go"
)

// Inserter is the subset of store.Querier the loader needs. Declared
// locally so ingest does not import store (store already imports mbp;
// nothing should need to import both ways).
type Inserter interface {
	InsertEvents(ctx context.Context, events []mbp.Event) (int64, error)
}

// LoadResult summarizes one Load call.
type LoadResult struct {
	JobID        string
	EventsRead   int64
	EventsLoaded int64
}

// DefaultBatchSize is the number of events buffered before each
// InsertEvents call.
const DefaultBatchSize = 5000

// Load scans NDJSON events from r and inserts them into ins in batches
// of batchSize (DefaultBatchSize if <= 0), logging progress with
// logger. It stops and returns an error on the first decode or insert
// failure; partial batches already committed are not rolled back.
func Load(ctx context.Context, logger *zap.Logger, ins Inserter, r io.Reader, batchSize int) (LoadResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	jobID := uuid.NewString()
	logger = logger.With(zap.String("job_id", jobID))
	logger.Info("ingest started")

	result := LoadResult{JobID: jobID}
	scanner := NewEventScanner(r)
	batch := make([]mbp.Event, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := ins.InsertEvents(ctx, batch)
		if err != nil {
			return fmt.Errorf("insert batch of %d events: %w", len(batch), err)
		}
		result.EventsLoaded += n
		logger.Debug("flushed batch", zap.Int("batch_size", len(batch)), zap.Int64("total_loaded", result.EventsLoaded))
		batch = batch[:0]
		return nil
	}

	for scanner.Next() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		e, err := scanner.Decode()
		if err != nil {
			return result, fmt.Errorf("decode event %d: %w", result.EventsRead, err)
		}
		result.EventsRead++
		batch = append(batch, e)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("scan events: %w", err)
	}
	if err := flush(); err != nil {
		return result, err
	}

	logger.Info("ingest finished", zap.Int64("events_read", result.EventsRead), zap.Int64("events_loaded", result.EventsLoaded))
	return result, nil
}
