// Copyright (c) 2025 Neomantra Corp
//
// MBP-1 projector, grounded on original_source's Mbp1Msg::retrieve_query
// (api/src/database/market_data.rs): join mbp+bid_ask+instrument, filter
// by ticker and ts_recv range, depth-0 level only.

package store

import (
	"context"
	"fmt"

	"github.com/neomantra/mbp-go"
)

// Mbp1Projector implements mbp.Projector for the mbp-1 schema.
type Mbp1Projector struct {
	Q Querier
}

var _ mbp.Projector = (*Mbp1Projector)(nil)

func (p *Mbp1Projector) ExecuteBatch(ctx context.Context, params mbp.RetrieveParams, batch mbp.Cursor, windowEnd int64) ([]mbp.RecordEnvelope, *mbp.SymbolMap, error) {
	return runPointInTimeBatch(ctx, p.Q, params, batch, windowEnd, false, false, func(row Rows) (mbp.RecordEnvelope, uint32, string, error) {
		m, ticker, err := decodeMbp1(row)
		return mbp.EnvelopeMbp1(m), m.Header.InstrumentID, ticker, err
	})
}

// queryPointInTime builds the shared mbp-1/trade/tbbo SQL: the mbp/
// bid_ask/instrument join filtered by ticker set and ts_recv range,
// with an optional action filter for trade-only schemas (spec.md
// §4.D.2, "added predicate action = 84") and optional ts_event
// ordering (trade/tbbo are "Ordered by ts_event ascending"; mbp-1 is
// not, per spec.md §4.D.1/§4.D.2).
func queryPointInTime(q Querier, symbols []string, tradeOnly, orderByTsEvent bool) string {
	d := q.Dialect()
	base := fmt.Sprintf(`
		SELECT m.instrument_id, m.ts_event, m.price, m.size, m.action, m.side, m.flags,
		       m.ts_recv, m.ts_in_delta, m.sequence, i.ticker,
		       b.bid_px, b.ask_px, b.bid_sz, b.ask_sz, b.bid_ct, b.ask_ct
		FROM mbp m
		INNER JOIN instrument i ON m.instrument_id = i.id
		LEFT JOIN bid_ask b ON m.id = b.mbp_id AND b.depth = 0
		WHERE m.ts_recv BETWEEN %s AND %s
		  AND i.ticker IN %s
	`, d.Placeholder(1), d.Placeholder(2), d.InList(2, len(symbols)))

	if tradeOnly {
		base += " AND m.action = 84"
	}
	if orderByTsEvent {
		base += " ORDER BY m.ts_event ASC"
	}
	return base
}

func decodeMbp1(row Rows) (mbp.Mbp1Msg, string, error) {
	var m mbp.Mbp1Msg
	var action, side byte
	var ticker string
	err := row.Scan(
		&m.Header.InstrumentID, &m.Header.TsEvent,
		&m.Price, &m.Size, &action, &side, &m.Flags,
		&m.TsRecv, &m.TsInDelta, &m.Sequence, &ticker,
		&m.Levels[0].BidPx, &m.Levels[0].AskPx,
		&m.Levels[0].BidSz, &m.Levels[0].AskSz,
		&m.Levels[0].BidCt, &m.Levels[0].AskCt,
	)
	m.Action, m.Side = mbp.Action(action), mbp.Side(side)
	return m, ticker, mbp.StorageError(err)
}

// runPointInTimeBatch executes the shared query, decodes every row
// with decode, and accumulates the symbol map. No ordering is applied
// in SQL for mbp-1 (spec.md §4.D.1, "no ordering is guaranteed by the
// projector itself").
func runPointInTimeBatch(
	ctx context.Context, q Querier, params mbp.RetrieveParams, batch mbp.Cursor, windowEnd int64,
	tradeOnly, orderByTsEvent bool,
	decode func(Rows) (mbp.RecordEnvelope, uint32, string, error),
) ([]mbp.RecordEnvelope, *mbp.SymbolMap, error) {
	sqlText := queryPointInTime(q, params.Symbols, tradeOnly, orderByTsEvent)

	args := make([]any, 0, len(params.Symbols)+2)
	args = append(args, batch.Start, windowEnd)
	for _, s := range params.Symbols {
		args = append(args, s)
	}

	rows, err := q.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	symbols := mbp.NewSymbolMap()
	var out []mbp.RecordEnvelope
	for rows.Next() {
		env, instrumentID, ticker, err := decode(rows)
		if err != nil {
			return nil, nil, err
		}
		symbols.AddInstrument(ticker, instrumentID)
		out = append(out, env)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mbp.StorageError(err)
	}
	return out, symbols, nil
}
