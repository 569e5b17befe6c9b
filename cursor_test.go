// Copyright (c) 2025 Neomantra Corp

package mbp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// projectorFunc adapts a plain function to the Projector interface for
// tests that don't need a real storage backend.
type projectorFunc func(params RetrieveParams, batch Cursor, windowEnd int64) ([]RecordEnvelope, error)

func (f projectorFunc) ExecuteBatch(_ context.Context, params RetrieveParams, batch Cursor, windowEnd int64) ([]RecordEnvelope, *SymbolMap, error) {
	rows, err := f(params, batch, windowEnd)
	return rows, nil, err
}

func TestCursorNextWindow(t *testing.T) {
	const dayNs int64 = 86_400_000_000_000

	tests := []struct {
		name          string
		start, end    int64
		intervalNs    int64
		batchSizeNs   int64
		wantStart     int64
		wantWindowEnd int64
		wantFinal     bool
	}{
		{
			// mirrors original_source test_retrieve_batch_interval
			name:          "batch equals interval, range within one interval",
			start:         1728878401000000000, // 2024-10-14 04:00:01 UTC
			end:           1728878460000000000, // 2024-10-14 04:01:00 UTC
			intervalNs:    dayNs,
			batchSizeNs:   dayNs,
			wantStart:     1728864000000000000, // 2024-10-14 00:00 UTC
			wantWindowEnd: 1728864000000000000,
			wantFinal:     true,
		},
		{
			// mirrors original_source test_retrieve_batch_interval_end_gt_batch
			name:          "range exceeds batch size",
			start:         1728878401000000000,
			end:           1729396801000000000, // 2024-10-20 04:00:01 UTC
			intervalNs:    dayNs,
			batchSizeNs:   dayNs,
			wantStart:     1728864000000000000,
			wantWindowEnd: 1728950400000000000, // 2024-10-15 00:00 UTC
			wantFinal:     false,
		},
		{
			// mirrors original_source test_retrieve_batch_interval_end_lt_batch
			name:          "batch size exceeds range",
			start:         1728878401000000000,
			end:           1729396801000000000,
			intervalNs:    dayNs,
			batchSizeNs:   dayNs * 7,
			wantStart:     1728864000000000000,
			wantWindowEnd: 1729382400000000000, // 2024-10-20 00:00 UTC
			wantFinal:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := Cursor{Start: tt.start, End: tt.end, IntervalNs: tt.intervalNs}
			aligned, windowEnd, final := cur.NextWindow(tt.batchSizeNs)
			require.Equal(t, tt.wantStart, aligned.Start)
			require.Equal(t, tt.wantWindowEnd, windowEnd)
			require.Equal(t, tt.wantFinal, final)
		})
	}
}

func TestCursorAdvancePointInTime(t *testing.T) {
	cur := Cursor{Start: 0, End: 100, IntervalNs: 1}
	next := cur.AdvancePointInTime(50)
	require.Equal(t, int64(51), next.Start)
}

func TestCursorAdvanceWindowed(t *testing.T) {
	cur := Cursor{Start: 0, End: 100, IntervalNs: 1_000_000_000}
	next := cur.AdvanceWindowed(50_000_000_000)
	require.Equal(t, int64(50_000_000_000), next.Start)
}

func TestCursorAdvanceDispatchesBySchema(t *testing.T) {
	pointInTime := Cursor{Start: 0, End: 100, IntervalNs: 1}
	require.Equal(t, int64(11), pointInTime.Advance(Schema_Mbp1, 10).Start)

	windowed := Cursor{Start: 0, End: 100, IntervalNs: 1_000_000_000}
	require.Equal(t, int64(10), windowed.Advance(Schema_Ohlcv1S, 10).Start)
}

func TestCursorDone(t *testing.T) {
	require.False(t, Cursor{Start: 0, End: 100}.Done())
	require.True(t, Cursor{Start: 101, End: 100}.Done())
	require.False(t, Cursor{Start: 100, End: 100}.Done())
}

func TestDispatchTerminatesOnFinalWindowedBatch(t *testing.T) {
	// Regression test: a windowed schema whose range doesn't divide
	// evenly by batchSizeNs must not loop forever recomputing the same
	// capped windowEnd (spec.md §4.B, "Termination").
	params := RetrieveParams{
		Symbols: []string{"AAPL"},
		StartTs: 0,
		EndTs:   2_500_000_000, // 2.5s, not interval-aligned
		Schema:  Schema_Ohlcv1S,
	}
	calls := 0
	proj := projectorFunc(func(_ RetrieveParams, _ Cursor, _ int64) ([]RecordEnvelope, error) {
		calls++
		if calls > 10 {
			t.Fatal("dispatch did not terminate")
		}
		return nil, nil
	})
	_, err := Dispatch(context.Background(), proj, params, 1_000_000_000, func(RecordEnvelope) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 3, calls) // [0,1), [1,2), then final [2,2): End 2.5s aligns down to 2s
}
