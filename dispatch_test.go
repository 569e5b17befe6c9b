// Copyright (c) 2025 Neomantra Corp

package mbp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatchRejectsInvalidParams(t *testing.T) {
	params := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 10, EndTs: 0, Schema: Schema_Mbp1}
	proj := projectorFunc(func(RetrieveParams, Cursor, int64) ([]RecordEnvelope, error) {
		t.Fatal("projector should not run for invalid params")
		return nil, nil
	})
	_, err := Dispatch(context.Background(), proj, params, 0, func(RecordEnvelope) error { return nil })
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestDispatchStreamsInOrder(t *testing.T) {
	params := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 5, Schema: Schema_Trade}
	calls := 0
	proj := projectorFunc(func(_ RetrieveParams, batch Cursor, windowEnd int64) ([]RecordEnvelope, error) {
		calls++
		m := TradeMsg{Header: RecordHeader{TsEvent: uint64(batch.Start)}}
		return []RecordEnvelope{EnvelopeTrade(m)}, nil
	})

	var seen []uint64
	_, err := Dispatch(context.Background(), proj, params, 2, func(e RecordEnvelope) error {
		require.Equal(t, RecordKind_Trade, e.Kind)
		seen = append(seen, e.Trade.Header.TsEvent)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 3}, seen) // batch size 2 => windows [0,2] then final [3,5]
	require.Equal(t, 2, calls)
}

func TestDispatchUsesDefaultBatchSize(t *testing.T) {
	params := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 10, Schema: Schema_Mbp1}
	var gotWindowEnd int64
	proj := projectorFunc(func(_ RetrieveParams, _ Cursor, windowEnd int64) ([]RecordEnvelope, error) {
		gotWindowEnd = windowEnd
		return nil, nil
	})
	_, err := Dispatch(context.Background(), proj, params, 0, func(RecordEnvelope) error { return nil })
	require.NoError(t, err)
	require.Equal(t, int64(10), gotWindowEnd) // range fits in one default-sized batch
}

func TestDispatchPropagatesProjectorError(t *testing.T) {
	params := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 10, Schema: Schema_Mbp1}
	boom := storageError(context.DeadlineExceeded)
	proj := projectorFunc(func(RetrieveParams, Cursor, int64) ([]RecordEnvelope, error) {
		return nil, boom
	})
	_, err := Dispatch(context.Background(), proj, params, 0, func(RecordEnvelope) error { return nil })
	require.ErrorIs(t, err, ErrStorageError)
}

func TestDispatchStopsOnCancelledContext(t *testing.T) {
	params := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 10, Schema: Schema_Mbp1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	proj := projectorFunc(func(RetrieveParams, Cursor, int64) ([]RecordEnvelope, error) {
		t.Fatal("projector should not run once context is cancelled")
		return nil, nil
	})
	_, err := Dispatch(ctx, proj, params, 0, func(RecordEnvelope) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestDispatchStopsOnEmitError(t *testing.T) {
	params := RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 10, Schema: Schema_Trade}
	proj := projectorFunc(func(RetrieveParams, Cursor, int64) ([]RecordEnvelope, error) {
		return []RecordEnvelope{EnvelopeTrade(TradeMsg{})}, nil
	})
	sentinel := ErrCancelled
	_, err := Dispatch(context.Background(), proj, params, 0, func(RecordEnvelope) error { return sentinel })
	require.ErrorIs(t, err, sentinel)
}
