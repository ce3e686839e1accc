// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cultivar/internal/logging"
	"github.com/tomtom215/cultivar/internal/modelstore"
	"github.com/tomtom215/cultivar/internal/pipeline"
)

// runFlags are the input and sink overrides shared by run and schedule.
type runFlags struct {
	transactions string
	customers    string
	xlsx         bool
	duckdb       string
	postgres     string
	modelDir     string
	noProgress   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.transactions, "transactions", "t", "",
		"transactions file (.csv, .xlsx or .duckdb)")
	cmd.Flags().StringVarP(&f.customers, "customers", "c", "",
		"customer base table file (optional; derived from transactions when empty)")
	cmd.Flags().BoolVar(&f.xlsx, "xlsx", false,
		"also write every table to one XLSX workbook")
	cmd.Flags().StringVar(&f.duckdb, "duckdb", "",
		"also write every table to this DuckDB file")
	cmd.Flags().StringVar(&f.postgres, "postgres", "",
		"also write every table to this PostgreSQL URL")
	cmd.Flags().StringVar(&f.modelDir, "models", "",
		"persist trained models in this directory")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false,
		"disable the recommendation progress bar")
}

// apply copies the set flags onto the configuration.
func (f *runFlags) apply(a *app) {
	cfg := a.cfg
	if f.transactions != "" {
		cfg.Input.TransactionsPath = f.transactions
	}
	if f.customers != "" {
		cfg.Input.CustomersPath = f.customers
	}
	if f.xlsx {
		cfg.Output.XLSX = true
	}
	if f.duckdb != "" {
		cfg.Output.DuckDBPath = f.duckdb
	}
	if f.postgres != "" {
		cfg.Output.PostgresURL = f.postgres
	}
	if f.modelDir != "" {
		cfg.Output.ModelDir = f.modelDir
	}
}

func newRunCmd(a *app) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Long: `Run all four stages once over the input snapshot and write every
output table. The command exits non-zero when any stage or sink failed;
tables from the stages that succeeded are still written.

Example:
  cultivar run -t transactions.csv -c customers.csv -o output --xlsx
  cultivar run -t sales.duckdb --duckdb results.duckdb --models models/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(a)
			if err := a.validate(); err != nil {
				return err
			}
			if a.cfg.Input.TransactionsPath == "" {
				return fmt.Errorf("no transactions file: pass --transactions or set input.transactions_path")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, cleanup, err := a.newPipeline(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			res, runErr := p.Run(ctx)
			printSummary(cmd.OutOrStdout(), res)
			return runErr
		},
	}
	flags.register(cmd)
	return cmd
}

// newPipeline wires the loader, model store and progress bar for one
// pipeline. cleanup releases the loader's cache.
func (a *app) newPipeline(flags *runFlags, progressOut io.Writer) (*pipeline.Pipeline, func(), error) {
	logger := logging.Logger()

	loader, closeCache, err := pipeline.NewLoader(a.cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := closeCache(); err != nil {
			logger.Warn().Err(err).Msg("failed to close cache")
		}
	}

	var opts []pipeline.Option
	if dir := a.cfg.Output.ModelDir; dir != "" {
		store, err := modelstore.NewStore(dir)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithModelStore(store))
	}
	if !flags.noProgress && isTerminal(progressOut) {
		bar := newProgressBar(progressOut, "recommending")
		opts = append(opts, pipeline.WithProgress(bar.update))
	}

	p, err := pipeline.New(a.cfg, loader, logger, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}

// printSummary writes a human-readable account of a run.
func printSummary(w io.Writer, res *pipeline.Result) {
	if res == nil {
		return
	}

	fmt.Fprintf(w, "\nRun %s finished in %s\n", logging.ShortID(res.RunID), res.Duration.Round(time.Millisecond))
	if !res.AnalysisDate.IsZero() {
		fmt.Fprintf(w, "Analysis date: %s\n", res.AnalysisDate.Format("2006-01-02"))
	}
	if res.Customers != nil {
		fmt.Fprintf(w, "Customers:     %s\n", humanize.Comma(int64(len(res.Customers.Rows))))
	}

	fmt.Fprintln(w, "\nStages:")
	for _, st := range res.Stages {
		line := fmt.Sprintf("  %-10s %-8s %10s rows  %s", st.Name, st.Status,
			humanize.Comma(int64(st.Rows)), st.Duration.Round(time.Millisecond))
		if st.Error != "" {
			line += "  " + st.Error
		}
		fmt.Fprintln(w, line)
		for _, warn := range st.Warnings {
			fmt.Fprintf(w, "  %-10s warning: %s\n", "", warn)
		}
	}

	if len(res.Sinks) > 0 {
		fmt.Fprintln(w, "\nSinks:")
		for _, s := range res.Sinks {
			line := fmt.Sprintf("  %-10s %-8s %s", s.Name, s.Status, s.Duration.Round(time.Millisecond))
			if s.Error != "" {
				line += "  " + s.Error
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(res.Tables) > 0 {
		fmt.Fprintln(w, "\nTables:")
		for _, t := range res.Tables {
			fmt.Fprintf(w, "  %-36s %10s rows\n", t.Name, humanize.Comma(int64(t.Rows)))
		}
	}

	if res.Recommendations != nil {
		r := res.Recommendations
		fmt.Fprintf(w, "\nRecommendations: %s for %s customers, %s rules, %s cross-sell\n",
			humanize.Comma(int64(r.TotalRecommendations)),
			humanize.Comma(int64(r.CustomersTargeted)),
			humanize.Comma(int64(r.AssociationRules)),
			humanize.Comma(int64(r.CrossSellOpportunities)))
	}
	if res.ReportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", res.ReportPath)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
