// Copyright (c) 2025 Neomantra Corp
//
// TBBO projector (spec.md §4.D.2): a trade paired with its depth-0
// level at the moment of the trade. Field-for-field identical to the
// mbp-1 decode; only the WHERE clause and ordering differ.

package store

import (
	"context"

	"github.com/neomantra/mbp-go"
)

// TbboProjector implements mbp.Projector for the tbbo schema.
type TbboProjector struct {
	Q Querier
}

var _ mbp.Projector = (*TbboProjector)(nil)

func (p *TbboProjector) ExecuteBatch(ctx context.Context, params mbp.RetrieveParams, batch mbp.Cursor, windowEnd int64) ([]mbp.RecordEnvelope, *mbp.SymbolMap, error) {
	return runPointInTimeBatch(ctx, p.Q, params, batch, windowEnd, true, true, func(row Rows) (mbp.RecordEnvelope, uint32, string, error) {
		m, ticker, err := decodeTbbo(row)
		return mbp.EnvelopeTbbo(m), m.Header.InstrumentID, ticker, err
	})
}

func decodeTbbo(row Rows) (mbp.TbboMsg, string, error) {
	var m mbp.TbboMsg
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
