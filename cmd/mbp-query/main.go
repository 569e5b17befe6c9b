// Copyright (c) 2025 Neomantra Corp

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relvacode/iso8601"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neomantra/mbp-go"
	"github.com/neomantra/mbp-go/export"
	"github.com/neomantra/mbp-go/store"
)

///////////////////////////////////////////////////////////////////////////////

var (
	pgDSN       string
	duckPath    string
	symbolsArg  string
	startArg    string
	endArg      string
	schemaArg   string
	formatArg   string
	outFile     string
	batchSizeNs int64
	verbose     bool
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func main() {
	queryCmd.Flags().StringVar(&pgDSN, "postgres-dsn", "", "Postgres connection string (mutually exclusive with --duckdb)")
	queryCmd.Flags().StringVar(&duckPath, "duckdb", "", "DuckDB file path, or ':memory:' (mutually exclusive with --postgres-dsn)")
	queryCmd.Flags().StringVar(&symbolsArg, "symbols", "", "comma-separated list of tickers (required)")
	queryCmd.Flags().StringVar(&startArg, "start", "", "range start, RFC3339/ISO8601 (required)")
	queryCmd.Flags().StringVar(&endArg, "end", "", "range end, RFC3339/ISO8601 (required)")
	queryCmd.Flags().StringVar(&schemaArg, "schema", string(mbp.Schema_Mbp1), "retrieval schema: mbp-1, trade, tbbo, bbo-1s, bbo-1m, ohlcv-1s, ohlcv-1m, ohlcv-1h, ohlcv-1d")
	queryCmd.Flags().StringVar(&formatArg, "format", "json", "output format: json or parquet")
	queryCmd.Flags().StringVar(&outFile, "out", "-", "output file, or '-' for stdout")
	queryCmd.Flags().Int64Var(&batchSizeNs, "batch-size-ns", mbp.DefaultBatchSizeNs, "internal batch window size in nanoseconds")
	queryCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
	queryCmd.MarkFlagRequired("symbols")
	queryCmd.MarkFlagRequired("start")
	queryCmd.MarkFlagRequired("end")

	requireNoError(queryCmd.Execute())
}

///////////////////////////////////////////////////////////////////////////////

var queryCmd = &cobra.Command{
	Use:   "mbp-query",
	Short: "mbp-query retrieves and projects MBP-1 events from a mbp-go store",
	Run:   runQuery,
}

func newLogger() *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func openStore(ctx context.Context) (store.Querier, func(), error) {
	switch {
	case duckPath != "":
		db, err := store.OpenDuckStore(duckPath)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.DB.Close() }, nil
	case pgDSN != "":
		pool, err := pgxpool.New(ctx, pgDSN)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPgStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("one of --postgres-dsn or --duckdb is required")
	}
}

// projectorFor picks the projector implementation for schema (spec.md
// §4.F dispatch table).
func projectorFor(q store.Querier, schema mbp.Schema) (mbp.Projector, error) {
	switch schema {
	case mbp.Schema_Mbp1:
		return &store.Mbp1Projector{Q: q}, nil
	case mbp.Schema_Trade:
		return &store.TradeProjector{Q: q}, nil
	case mbp.Schema_Tbbo:
		return &store.TbboProjector{Q: q}, nil
	case mbp.Schema_Bbo1S, mbp.Schema_Bbo1M:
		return &store.BboProjector{Q: q}, nil
	case mbp.Schema_Ohlcv1S, mbp.Schema_Ohlcv1M, mbp.Schema_Ohlcv1H, mbp.Schema_Ohlcv1D:
		return &store.OhlcvProjector{Q: q}, nil
	default:
		return nil, fmt.Errorf("unknown schema %q", schema)
	}
}

func parseTimestamp(arg string) (int64, error) {
	t, err := iso8601.ParseString(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", arg, err)
	}
	return t.UnixNano(), nil
}

func runQuery(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger := newLogger()
	defer logger.Sync()

	schema, err := mbp.ParseSchema(schemaArg)
	requireNoError(err)

	startTs, err := parseTimestamp(startArg)
	requireNoError(err)
	endTs, err := parseTimestamp(endArg)
	requireNoError(err)

	symbols := strings.Split(symbolsArg, ",")
	for i := range symbols {
		symbols[i] = strings.TrimSpace(symbols[i])
	}

	q, closeStore, err := openStore(ctx)
	requireNoError(err)
	defer closeStore()

	proj, err := projectorFor(q, schema)
	requireNoError(err)

	params := mbp.RetrieveParams{Symbols: symbols, StartTs: startTs, EndTs: endTs, Schema: schema}

	out := os.Stdout
	if outFile != "-" {
		f, err := os.Create(outFile)
		requireNoError(err)
		defer f.Close()
		out = f
	}

	started := time.Now()
	var emitted int64

	switch formatArg {
	case "json":
		jw := export.NewJsonWriter(out)
		_, err = mbp.Dispatch(ctx, proj, params, batchSizeNs, func(rec mbp.RecordEnvelope) error {
			emitted++
			return jw.Write(rec)
		})
		requireNoError(err)

	case "parquet":
		// Parquet rows carry the resolved ticker (export's write*Row
		// functions look it up via SymbolMap.Ticker), which isn't known
		// until the whole SymbolMap has been merged across every batch
		// — so buffer records here and write them only after Dispatch
		// returns the complete map.
		var records []mbp.RecordEnvelope
		symbolMap, err := mbp.Dispatch(ctx, proj, params, batchSizeNs, func(rec mbp.RecordEnvelope) error {
			records = append(records, rec)
			return nil
		})
		requireNoError(err)

		if len(records) > 0 {
			pw, err := export.NewParquetWriter(out, records[0].Kind, symbolMap)
			requireNoError(err)
			for _, rec := range records {
				requireNoError(pw.WriteRecord(rec))
				emitted++
			}
			requireNoError(pw.Close())
		}

	default:
		requireNoError(fmt.Errorf("unknown format %q (want json or parquet)", formatArg))
	}

	logger.Info("query complete",
		zap.String("schema", string(schema)),
		zap.Int64("records", emitted),
		zap.Duration("elapsed", time.Since(started)),
	)
	fmt.Fprintf(os.Stderr, "%s records in %s\n", humanize.Comma(emitted), time.Since(started))
}
