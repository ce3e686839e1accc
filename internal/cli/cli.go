// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cultivar/internal/config"
	"github.com/tomtom215/cultivar/internal/logging"
	"github.com/tomtom215/cultivar/internal/metrics"
)

// app holds the state shared by every subcommand.
type app struct {
	version string

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	outputDir string
	seed      int64

	cfg *config.Config

	// logOutput is where zerolog writes; tests swap it for a buffer.
	logOutput io.Writer
}

// Execute runs the command line with os.Args and returns the process exit code.
func Execute(version string) int {
	cmd := NewRootCommand(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCommand builds the cultivar command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version, logOutput: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "cultivar",
		Short: "Customer segmentation, prediction and product recommendation",
		Long: `cultivar turns a transaction history into customer intelligence:

  1. RFM features per customer
  2. Segmentation with RFM rules and K-Means clusters
  3. Churn and lifetime-value models, purchase timing and priority
  4. Hybrid product recommendations and cross-sell opportunities

Every table is written as CSV into the output directory, and optionally to
an XLSX workbook, a DuckDB file and a PostgreSQL schema.

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (CULTIVAR_*, e.g. CULTIVAR_OUTPUT__DIR)
  3. Config file (cultivar.yaml)
  4. Built-in defaults`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default: ./cultivar.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "",
		"log format (json, console)")
	rootCmd.PersistentFlags().StringVarP(&a.outputDir, "output", "o", "",
		"output directory for result tables")
	rootCmd.PersistentFlags().Int64Var(&a.seed, "seed", 0,
		"random seed for K-Means, model splits and boosting (0 keeps the configured seed)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newScheduleCmd(a),
		newGenerateCmd(a),
		newModelsCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// initConfig loads configuration, applies the global flags and initializes
// logging.
func (a *app) initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if a.outputDir != "" {
		cfg.Output.Dir = a.outputDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = a.seed
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    a.logOutput,
	})
	metrics.SetAppInfo(a.version)

	a.cfg = cfg
	return nil
}

// validate re-checks the configuration after command flags were applied.
func (a *app) validate() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("cultivar %s\n", a.version)
		},
	}
}
