// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cultivar/internal/config"
	"github.com/tomtom215/cultivar/internal/database"
	"github.com/tomtom215/cultivar/internal/export"
	"github.com/tomtom215/cultivar/internal/metrics"
	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/pgsink"
)

// WorkbookName is the XLSX workbook written into the output directory.
const WorkbookName = "cultivar_results.xlsx"

// ReportName is the JSON run report written into the output directory.
const ReportName = "run_report.json"

// Sink receives the complete set of output tables once per run. A write
// replaces whatever the sink held from the previous run.
type Sink interface {
	Name() string
	Write(ctx context.Context, tables []*models.Table) error
	Close() error
}

// duckdbSink adapts database.DB to Sink.
type duckdbSink struct {
	db *database.DB
}

func (s duckdbSink) Name() string { return "duckdb" }

func (s duckdbSink) Write(ctx context.Context, tables []*models.Table) error {
	if err := s.db.WriteTables(ctx, tables); err != nil {
		return err
	}
	return s.db.Checkpoint(ctx)
}

func (s duckdbSink) Close() error { return s.db.Close() }

// OpenSinks opens every sink the output configuration enables. The CSV
// directory is always written; XLSX, DuckDB and PostgreSQL are optional.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenSinks(ctx context.Context, cfg config.OutputConfig, logger zerolog.Logger) (sinks []Sink, err error) {
	defer func() {
		if err != nil {
			closeSinks(sinks, logger)
			sinks = nil
		}
	}()

	csvSink, err := export.NewCSVSink(cfg.Dir)
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, csvSink)

	if cfg.XLSX {
		sinks = append(sinks, export.NewXLSXSink(filepath.Join(cfg.Dir, WorkbookName)))
	}

	if cfg.DuckDBPath != "" {
		db, err := database.Open(ctx, database.DefaultConfig(cfg.DuckDBPath), logger)
		if err != nil {
			return sinks, fmt.Errorf("duckdb sink: %w", err)
		}
		sinks = append(sinks, duckdbSink{db: db})
	}

	if cfg.PostgresURL != "" {
		pg, err := pgsink.Open(ctx, pgsink.Config{URL: cfg.PostgresURL, Schema: cfg.PostgresSchema}, logger)
		if err != nil {
			return sinks, fmt.Errorf("postgres sink: %w", err)
		}
		sinks = append(sinks, pg)
	}

	return sinks, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func closeSinks(sinks []Sink, logger zerolog.Logger) {
	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn().Err(err).Msg("failed to close sinks")
	}
}

// writeSinks writes tables to every sink concurrently. A failing sink does
// not stop the others; results are returned in sink order.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func writeSinks(ctx context.Context, sinks []Sink, tables []*models.Table, logger zerolog.Logger) []SinkResult {
	results := make([]SinkResult, len(sinks))

	var g errgroup.Group
	g.SetLimit(len(sinks) + 1)
	for i, s := range sinks {
		g.Go(func() error {
			start := time.Now()
			err := s.Write(ctx, tables)
			elapsed := time.Since(start)
			metrics.RecordSinkWrite(s.Name(), elapsed, err)

			res := SinkResult{Name: s.Name(), Status: StatusOK, Duration: elapsed}
			if err != nil {
				res.Status = StatusFailed
				res.Error = err.Error()
				logger.Error().Err(err).Str("sink", s.Name()).Msg("sink write failed")
			} else {
				logger.Debug().Str("sink", s.Name()).Dur("duration", elapsed).Int("tables", len(tables)).Msg("sink written")
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
