// Copyright (c) 2025 Neomantra Corp

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neomantra/mbp-go/ingest"
	"github.com/neomantra/mbp-go/store"
)

///////////////////////////////////////////////////////////////////////////////

var (
	pgDSN     string
	duckPath  string
	batchSize int
	forceZstd bool
	verbose   bool
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&pgDSN, "postgres-dsn", "", "Postgres connection string (mutually exclusive with --duckdb)")
	rootCmd.PersistentFlags().StringVar(&duckPath, "duckdb", "", "DuckDB file path, or ':memory:' (mutually exclusive with --postgres-dsn)")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", ingest.DefaultBatchSize, "number of events buffered per insert batch")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")

	loadCmd.Flags().BoolVarP(&forceZstd, "zstd", "z", false, "input is zstd-compressed, irrespective of filename suffix")
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(migrateCmd)

	requireNoError(rootCmd.Execute())
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "mbp-ingest",
	Short: "mbp-ingest bulk-loads newline-delimited JSON MBP-1 events into a mbp-go store",
}

///////////////////////////////////////////////////////////////////////////////

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

///////////////////////////////////////////////////////////////////////////////

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the instrument/mbp/bid_ask tables if they don't already exist",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		q, closeStore, err := openStore(ctx)
		requireNoError(err)
		defer closeStore()
		requireNoError(store.Migrate(ctx, q))
		fmt.Println("migration complete")
	},
}

///////////////////////////////////////////////////////////////////////////////

var loadCmd = &cobra.Command{
	Use:   "load file...",
	Short: "Load one or more newline-delimited JSON event files",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger()
		defer logger.Sync()

		q, closeStore, err := openStore(ctx)
		requireNoError(err)
		defer closeStore()

		for _, sourceFile := range args {
			reader, closer, err := ingest.MakeCompressedReader(sourceFile, forceZstd)
			requireNoError(err)

			result, err := ingest.Load(ctx, logger, q, reader, batchSize)
			closer.Close()
			requireNoError(err)

			fmt.Printf("%s: job %s loaded %s of %s events read\n",
				sourceFile, result.JobID,
				humanize.Comma(result.EventsLoaded), humanize.Comma(result.EventsRead))
		}
	},
}
