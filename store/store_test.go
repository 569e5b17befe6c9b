// Copyright (c) 2025 Neomantra Corp

package store_test

import (
	"context"
	"testing"

	"github.com/neomantra/mbp-go"
	"github.com/neomantra/mbp-go/store"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *store.DuckStore {
	t.Helper()
	db, err := store.OpenDuckStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.DB.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))
	_, err = db.Exec(context.Background(), `INSERT INTO instrument (id, ticker) VALUES (1, 'AAPL')`)
	require.NoError(t, err)
	return db
}

func sampleEvents() []mbp.Event {
	return []mbp.Event{
		{
			InstrumentID: 1, TsEvent: 1000, TsRecv: 1000, Price: 100_000_000_000, Size: 10,
			Action: mbp.Action_Trade, Side: mbp.Side_Bid, Sequence: 1,
			Levels: []mbp.BidAskPair{{BidPx: 99_000_000_000, AskPx: 101_000_000_000, BidSz: 5, AskSz: 5, BidCt: 1, AskCt: 1}},
		},
		{
			InstrumentID: 1, TsEvent: 2000, TsRecv: 2000, Price: 100_500_000_000, Size: 20,
			Action: mbp.Action_Trade, Side: mbp.Side_Ask, Sequence: 2,
			Levels: []mbp.BidAskPair{{BidPx: 99_500_000_000, AskPx: 101_500_000_000, BidSz: 6, AskSz: 6, BidCt: 1, AskCt: 1}},
		},
	}
}

func TestInsertAndProjectMbp1(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	n, err := db.InsertEvents(ctx, sampleEvents())
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	params := mbp.RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 3000, Schema: mbp.Schema_Mbp1}
	proj := &store.Mbp1Projector{Q: db}

	var got []mbp.Mbp1Msg
	symbols, err := mbp.Dispatch(ctx, proj, params, 0, func(e mbp.RecordEnvelope) error {
		require.Equal(t, mbp.RecordKind_Mbp1, e.Kind)
		got = append(got, *e.Mbp1)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	id, ok := symbols.InstrumentID("AAPL")
	require.True(t, ok)
	require.Equal(t, uint32(1), id)
}

func TestInsertAndProjectOhlcv(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.InsertEvents(ctx, sampleEvents())
	require.NoError(t, err)

	params := mbp.RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 1_000_000_000, Schema: mbp.Schema_Ohlcv1S}
	proj := &store.OhlcvProjector{Q: db}

	var bars []mbp.OhlcvMsg
	_, err = mbp.Dispatch(ctx, proj, params, 0, func(e mbp.RecordEnvelope) error {
		bars = append(bars, *e.Ohlcv)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, int64(100_000_000_000), bars[0].Open)
	require.Equal(t, int64(100_500_000_000), bars[0].Close)
	require.Equal(t, uint64(30), bars[0].Volume)
}

func TestBboCarriesForwardAcrossBuckets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	// both sample trades land in the first 1s bucket; a quote-only
	// event in the next bucket gives LOCF a trade-less bucket to fill.
	events := append(sampleEvents(), mbp.Event{
		InstrumentID: 1, TsEvent: 1_500_000_000, TsRecv: 1_500_000_000, Price: 0, Size: 0,
		Action: mbp.Action_Modify, Side: mbp.Side_None, Sequence: 3,
		Levels: []mbp.BidAskPair{{BidPx: 99_600_000_000, AskPx: 101_600_000_000, BidSz: 7, AskSz: 7, BidCt: 1, AskCt: 1}},
	})
	_, err := db.InsertEvents(ctx, events)
	require.NoError(t, err)

	params := mbp.RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 3_000_000_000, Schema: mbp.Schema_Bbo1S}
	proj := &store.BboProjector{Q: db}

	var bars []mbp.BboMsg
	_, err = mbp.Dispatch(ctx, proj, params, 0, func(e mbp.RecordEnvelope) error {
		bars = append(bars, *e.Bbo)
		return nil
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(bars), 2)
	// every bucket after the first trade carries a non-None side.
	for _, b := range bars[1:] {
		require.NotEqual(t, mbp.Side_None, b.Side)
	}
}

func TestBboTsEventCarriesRunningMax(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const second = 1_000_000_000
	events := []mbp.Event{
		{
			// bucket 1: a trade with a high ts_event.
			InstrumentID: 1, TsEvent: 5000, TsRecv: 1*second + 500_000_000, Price: 100_000_000_000, Size: 10,
			Action: mbp.Action_Trade, Side: mbp.Side_Bid, Sequence: 1,
			Levels: []mbp.BidAskPair{{BidPx: 99_000_000_000, AskPx: 101_000_000_000, BidSz: 5, AskSz: 5, BidCt: 1, AskCt: 1}},
		},
		{
			// bucket 2: a quote update only, no trade -- carry forward.
			InstrumentID: 1, TsEvent: 2_500_000_000, TsRecv: 2*second + 500_000_000, Price: 0, Size: 0,
			Action: mbp.Action_Modify, Side: mbp.Side_None, Sequence: 2,
			Levels: []mbp.BidAskPair{{BidPx: 99_100_000_000, AskPx: 101_100_000_000, BidSz: 5, AskSz: 5, BidCt: 1, AskCt: 1}},
		},
		{
			// bucket 3: a later, out-of-order trade with a LOWER ts_event
			// than bucket 1's trade -- price/size/side must update, but
			// the carried ts_event must not regress below 5000.
			InstrumentID: 1, TsEvent: 3000, TsRecv: 3*second + 500_000_000, Price: 200_000_000_000, Size: 7,
			Action: mbp.Action_Trade, Side: mbp.Side_Ask, Sequence: 3,
			Levels: []mbp.BidAskPair{{BidPx: 99_200_000_000, AskPx: 101_200_000_000, BidSz: 5, AskSz: 5, BidCt: 1, AskCt: 1}},
		},
	}
	_, err := db.InsertEvents(ctx, events)
	require.NoError(t, err)

	params := mbp.RetrieveParams{Symbols: []string{"AAPL"}, StartTs: 0, EndTs: 4 * second, Schema: mbp.Schema_Bbo1S}
	proj := &store.BboProjector{Q: db}

	var bars []mbp.BboMsg
	_, err = mbp.Dispatch(ctx, proj, params, 0, func(e mbp.RecordEnvelope) error {
		bars = append(bars, *e.Bbo)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, bars, 3)

	require.Equal(t, uint64(5000), bars[0].Header.TsEvent)
	require.Equal(t, int64(100_000_000_000), bars[0].Price)

	// bucket 2 carries bucket 1's trade forward unchanged.
	require.Equal(t, uint64(5000), bars[1].Header.TsEvent)
	require.Equal(t, int64(100_000_000_000), bars[1].Price)

	// bucket 3 picks up the new trade's price/size/side, but ts_event
	// stays at the running maximum instead of regressing to 3000.
	require.Equal(t, uint64(5000), bars[2].Header.TsEvent)
	require.Equal(t, int64(200_000_000_000), bars[2].Price)
	require.Equal(t, uint32(7), bars[2].Size)
	require.Equal(t, mbp.Side_Ask, bars[2].Side)
}
