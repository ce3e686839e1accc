// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cultivar/internal/database"
	"github.com/tomtom215/cultivar/internal/datagen"
	"github.com/tomtom215/cultivar/internal/export"
	"github.com/tomtom215/cultivar/internal/logging"
	"github.com/tomtom215/cultivar/internal/models"
)

// Output formats for generate.
const (
	formatCSV    = "csv"
	formatXLSX   = "xlsx"
	formatDuckDB = "duckdb"
)

type generateFlags struct {
	customers  int
	start      string
	end        string
	seed       uint64
	refundRate float64
	format     string
	out        string
	noProgress bool
}

func newGenerateCmd(a *app) *cobra.Command {
	def := datagen.DefaultConfig()
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic transactions and customers snapshot",
		Long: `Generate a reproducible synthetic snapshot for demos and testing. The
same seed always yields the same files.

Formats:
  csv     - transactions.csv and customers.csv in the --out directory
  xlsx    - one workbook with transactions and customers sheets
  duckdb  - transactions and customers tables in a DuckDB file

Example:
  cultivar generate --customers 2000 --out data
  cultivar run -t data/transactions.csv -c data/customers.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config()
			if err != nil {
				return err
			}

			var progress datagen.Progress
			if !flags.noProgress && isTerminal(cmd.ErrOrStderr()) {
				progress = newProgressBar(cmd.ErrOrStderr(), "generating").update
			}

			start := time.Now()
			snap, err := datagen.Generate(cmd.Context(), cfg, progress)
			if err != nil {
				return err
			}

			tables := []*models.Table{
				models.TransactionsTable(a.cfg.Input.TransactionsTable, snap.Transactions),
				models.CustomersTable(a.cfg.Input.CustomersTable, snap.Customers),
			}
			paths, err := writeSnapshot(cmd.Context(), flags.format, flags.out, tables)
			if err != nil {
				return err
			}

			printGenerated(cmd.OutOrStdout(), snap, paths, time.Since(start))
			return nil
		},
	}

	cmd.Flags().IntVarP(&flags.customers, "customers", "n", def.Customers,
		"number of customers")
	cmd.Flags().StringVar(&flags.start, "start", def.Start.Format(time.DateOnly),
		"first purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", def.End.Format(time.DateOnly),
		"last purchase date (YYYY-MM-DD)")
	cmd.Flags().Uint64Var(&flags.seed, "gen-seed", def.Seed,
		"generator seed")
	cmd.Flags().Float64Var(&flags.refundRate, "refund-rate", def.RefundRate,
		"share of orders followed by a refund line")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatCSV,
		"output format: csv, xlsx or duckdb")
	cmd.Flags().StringVar(&flags.out, "out", "data",
		"output directory (csv) or file (xlsx, duckdb)")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false,
		"disable the progress bar")
	return cmd
}

func (f *generateFlags) config() (datagen.Config, error) {
	cfg := datagen.DefaultConfig()
	cfg.Customers = f.customers
	cfg.Seed = f.seed
	cfg.RefundRate = f.refundRate

	var err error
	if cfg.Start, err = time.Parse(time.DateOnly, f.start); err != nil {
		return cfg, fmt.Errorf("invalid --start: %w", err)
	}
	if cfg.End, err = time.Parse(time.DateOnly, f.end); err != nil {
		return cfg, fmt.Errorf("invalid --end: %w", err)
	}
	return cfg, cfg.Validate()
}

// writeSnapshot writes the input tables in format and returns the paths
// written.
func writeSnapshot(ctx context.Context, format, out string, tables []*models.Table) ([]string, error) {
	switch format {
	case formatCSV:
		sink, err := export.NewCSVSink(out)
		if err != nil {
			return nil, err
		}
		if err := sink.Write(ctx, tables); err != nil {
			return nil, err
		}
		paths := make([]string, len(tables))
		for i, t := range tables {
			paths[i] = filepath.Join(out, t.Name+".csv")
		}
		return paths, nil

	case formatXLSX:
		if filepath.Ext(out) != ".xlsx" {
			out += ".xlsx"
		}
		if err := export.NewXLSXSink(out).Write(ctx, tables); err != nil {
			return nil, err
		}
		return []string{out}, nil

	case formatDuckDB:
		if ext := filepath.Ext(out); ext != ".duckdb" && ext != ".db" {
			out += ".duckdb"
		}
		db, err := database.Open(ctx, database.DefaultConfig(out), logging.Logger())
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logging.Warn().Err(cerr).Msg("failed to close DuckDB file")
			}
		}()
		if err := db.WriteTables(ctx, tables); err != nil {
			return nil, err
		}
		if err := db.Checkpoint(ctx); err != nil {
			return nil, err
		}
		return []string{out}, nil

	default:
		return nil, fmt.Errorf("unknown format %q (want csv, xlsx or duckdb)", format)
	}
}

func printGenerated(w io.Writer, snap *models.Snapshot, paths []string, elapsed time.Duration) {
	fmt.Fprintf(w, "Generated %s customers and %s transaction lines in %s\n",
		humanize.Comma(int64(len(snap.Customers))),
		humanize.Comma(int64(len(snap.Transactions))),
		elapsed.Round(time.Millisecond))
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
}
