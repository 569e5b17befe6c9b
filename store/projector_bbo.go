// Copyright (c) 2025 Neomantra Corp
//
// BBO projector (spec.md §4.D.4) — the hardest one. SQL does stage 1-3
// (window assignment, last-trade identification, per-bucket
// aggregation); LOCF carry-forward (stage 4) and final ordering
// (stage 5) run in Go, per the Design Notes' recommendation that
// implementers without a portable SQL aggregate do LOCF in
// application code.

package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/neomantra/mbp-go"
)

// BboProjector implements mbp.Projector for the bbo-* schemas. It
// carries LOCF state across batches for the lifetime of one Dispatch
// call — a single BboProjector instance must not be shared across
// concurrent requests.
type BboProjector struct {
	Q     Querier
	carry map[uint32]bboCarry
}

var _ mbp.Projector = (*BboProjector)(nil)

type bboCarry struct {
	tsEvent uint64
	price   int64
	size    uint32
	side    mbp.Side
	primed  bool
}

func (p *BboProjector) ExecuteBatch(ctx context.Context, params mbp.RetrieveParams, batch mbp.Cursor, windowEnd int64) ([]mbp.RecordEnvelope, *mbp.SymbolMap, error) {
	if p.carry == nil {
		p.carry = make(map[uint32]bboCarry)
	}
	d := p.Q.Dialect()
	intervalNs := params.Schema.IntervalNs()

	// spec.md §4.D.4 stage 1: "bucket by b = floor((ts_recv - 1) /
	// interval) * interval" — the deliberate -1 offset (edge cases).
	// Written as x - x % interval because DuckDB's "/" on integers
	// returns a DOUBLE, not a floor.
	sqlText := fmt.Sprintf(`
		WITH events AS (
			SELECT m.instrument_id, i.ticker, m.ts_recv, m.id AS mbp_id, m.action,
			       m.ts_event, m.price, m.size, m.side, m.flags, m.sequence,
			       b.bid_px, b.ask_px, b.bid_sz, b.ask_sz, b.bid_ct, b.ask_ct,
			       (m.ts_recv - 1) - ((m.ts_recv - 1) %% %d) AS bucket
			FROM mbp m
			INNER JOIN instrument i ON m.instrument_id = i.id
			LEFT JOIN bid_ask b ON m.id = b.mbp_id AND b.depth = 0
			WHERE m.ts_recv BETWEEN %s AND %s
			  AND i.ticker IN %s
		),
		last_event AS (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY instrument_id, bucket ORDER BY ts_recv DESC, mbp_id DESC) AS rn
			FROM events
		),
		last_trade AS (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY instrument_id, bucket ORDER BY ts_recv DESC, mbp_id DESC) AS rn
			FROM events WHERE action = 84
		)
		SELECT le.instrument_id, le.ticker, le.bucket,
		       le.bid_px, le.ask_px, le.bid_sz, le.ask_sz, le.bid_ct, le.ask_ct,
		       le.flags, le.sequence,
		       lt.ts_event, lt.price, lt.size, lt.side
		FROM last_event le
		LEFT JOIN last_trade lt
		  ON lt.instrument_id = le.instrument_id AND lt.bucket = le.bucket AND lt.rn = 1
		WHERE le.rn = 1
		ORDER BY le.instrument_id, le.bucket ASC
	`, intervalNs, d.Placeholder(1), d.Placeholder(2), d.InList(2, len(params.Symbols)))

	args := make([]any, 0, len(params.Symbols)+2)
	args = append(args, batch.Start, windowEnd)
	for _, s := range params.Symbols {
		args = append(args, s)
	}

	rows, err := p.Q.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	symbols := mbp.NewSymbolMap()
	var out []mbp.BboMsg
	for rows.Next() {
		var instrumentID uint32
		var ticker string
		var bucket int64
		var bidPx, askPx int64
		var bidSz, askSz, bidCt, askCt uint32
		var flags uint8
		var sequence uint32
		var tradeTsEvent *uint64
		var tradePrice *int64
		var tradeSize *uint32
		var tradeSide *byte

		if err := rows.Scan(
			&instrumentID, &ticker, &bucket,
			&bidPx, &askPx, &bidSz, &askSz, &bidCt, &askCt,
			&flags, &sequence,
			&tradeTsEvent, &tradePrice, &tradeSize, &tradeSide,
		); err != nil {
			return nil, nil, mbp.StorageError(err)
		}
		symbols.AddInstrument(ticker, instrumentID)

		c := p.carry[instrumentID]
		if tradeTsEvent != nil {
			// ts_event carries the running maximum of observed trade
			// timestamps (spec.md §4.D.4); price/size/side carry the
			// most recent trade instead, so an out-of-order trade can
			// update those without regressing ts_event.
			if *tradeTsEvent > c.tsEvent {
				c.tsEvent = *tradeTsEvent
			}
			c.price = *tradePrice
			c.size = *tradeSize
			c.side = mbp.Side(*tradeSide)
			c.primed = true
		}
		p.carry[instrumentID] = c

		m := mbp.BboMsg{
			Header:   mbp.RecordHeader{InstrumentID: instrumentID, TsEvent: c.tsEvent},
			Flags:    flags,
			Sequence: sequence,
			// spec.md §4.D.4 stage 5: "Report ts_recv = bucket + interval".
			TsRecv: uint64(bucket + intervalNs),
		}
		m.Levels[0] = mbp.BidAskPair{BidPx: bidPx, AskPx: askPx, BidSz: bidSz, AskSz: askSz, BidCt: bidCt, AskCt: askCt}
		if c.primed {
			m.Price, m.Size, m.Side = c.price, c.size, c.side
		} else {
			m.Side = mbp.Side_None
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mbp.StorageError(err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TsRecv < out[j].TsRecv })

	envelopes := make([]mbp.RecordEnvelope, len(out))
	for i := range out {
		envelopes[i] = mbp.EnvelopeBbo(out[i])
	}
	return envelopes, symbols, nil
}
