// Copyright (c) 2025 Neomantra Corp
//
// Trade projector (spec.md §4.D.2): same join as mbp-1, restricted to
// action='T' (ASCII 84), levels omitted, ordered by ts_event.

package store

import (
	"context"

	"github.com/neomantra/mbp-go"
)

// TradeProjector implements mbp.Projector for the trade schema.
type TradeProjector struct {
	Q Querier
}

var _ mbp.Projector = (*TradeProjector)(nil)

func (p *TradeProjector) ExecuteBatch(ctx context.Context, params mbp.RetrieveParams, batch mbp.Cursor, windowEnd int64) ([]mbp.RecordEnvelope, *mbp.SymbolMap, error) {
	return runPointInTimeBatch(ctx, p.Q, params, batch, windowEnd, true, true, func(row Rows) (mbp.RecordEnvelope, uint32, string, error) {
		m, ticker, err := decodeTrade(row)
		return mbp.EnvelopeTrade(m), m.Header.InstrumentID, ticker, err
	})
}

func decodeTrade(row Rows) (mbp.TradeMsg, string, error) {
	var m mbp.TradeMsg
	var action, side byte
	var ticker string
	// discard level columns; the shared SELECT always includes them.
	var bidPx, askPx int64
	var bidSz, askSz, bidCt, askCt uint32
	err := row.Scan(
		&m.Header.InstrumentID, &m.Header.TsEvent,
		&m.Price, &m.Size, &action, &side, &m.Flags,
		&m.TsRecv, &m.TsInDelta, &m.Sequence, &ticker,
		&bidPx, &askPx, &bidSz, &askSz, &bidCt, &askCt,
	)
	m.Action, m.Side = mbp.Action(action), mbp.Side(side)
	return m, ticker, mbp.StorageError(err)
}
