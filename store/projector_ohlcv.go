// Copyright (c) 2025 Neomantra Corp
//
// OHLCV projector (spec.md §4.D.3): one bar per (instrument, bucket),
// bucket = floor(ts_recv/interval)*interval, open/close picked by
// first/last physical row in the bucket, low/high/volume aggregated.

package store

import (
	"context"
	"fmt"

	"github.com/neomantra/mbp-go"
)

// OhlcvProjector implements mbp.Projector for the ohlcv-* schemas.
type OhlcvProjector struct {
	Q Querier
}

var _ mbp.Projector = (*OhlcvProjector)(nil)

func (p *OhlcvProjector) ExecuteBatch(ctx context.Context, params mbp.RetrieveParams, batch mbp.Cursor, windowEnd int64) ([]mbp.RecordEnvelope, *mbp.SymbolMap, error) {
	d := p.Q.Dialect()
	intervalNs := params.Schema.IntervalNs()

	// spec.md §4.D.3: "Range predicate: ts_recv BETWEEN start_ts AND
	// window_end - 1". The bucket is computed as ts_recv - ts_recv % interval
	// because DuckDB's "/" on integers returns a DOUBLE, not a floor.
	sqlText := fmt.Sprintf(`
		WITH events AS (
			SELECT m.instrument_id, i.ticker, m.ts_recv, m.id AS mbp_id, m.price, m.size,
			       m.ts_recv - (m.ts_recv %% %d) AS bucket
			FROM mbp m
			INNER JOIN instrument i ON m.instrument_id = i.id
			WHERE m.ts_recv BETWEEN %s AND %s
			  AND i.ticker IN %s
			  AND m.action = 84
		),
		ranked AS (
			SELECT *,
			       ROW_NUMBER() OVER (PARTITION BY instrument_id, bucket ORDER BY ts_recv ASC, mbp_id ASC)  AS rn_first,
			       ROW_NUMBER() OVER (PARTITION BY instrument_id, bucket ORDER BY ts_recv DESC, mbp_id DESC) AS rn_last
			FROM events
		)
		SELECT instrument_id, MAX(ticker), bucket,
		       MAX(CASE WHEN rn_first = 1 THEN price END) AS open,
		       MAX(CASE WHEN rn_last  = 1 THEN price END) AS close,
		       MIN(price) AS low,
		       MAX(price) AS high,
		       SUM(size)  AS volume
		FROM ranked
		GROUP BY instrument_id, bucket
		ORDER BY bucket ASC
	`, intervalNs, d.Placeholder(1), d.Placeholder(2), d.InList(2, len(params.Symbols)))

	args := make([]any, 0, len(params.Symbols)+2)
	args = append(args, batch.Start, windowEnd-1)
	for _, s := range params.Symbols {
		args = append(args, s)
	}

	rows, err := p.Q.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	symbols := mbp.NewSymbolMap()
	var out []mbp.RecordEnvelope
	for rows.Next() {
		var m mbp.OhlcvMsg
		var ticker string
		var bucket int64
		if err := rows.Scan(&m.Header.InstrumentID, &ticker, &bucket, &m.Open, &m.Close, &m.Low, &m.High, &m.Volume); err != nil {
			return nil, nil, mbp.StorageError(err)
		}
		m.Header.TsEvent = uint64(bucket)
		symbols.AddInstrument(ticker, m.Header.InstrumentID)
		out = append(out, mbp.EnvelopeOhlcv(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mbp.StorageError(err)
	}
	return out, symbols, nil
}
