// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every pipeline collector. It is separate from the default
// registry so the textfile export carries only run metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Stage status label values.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

var (
	// Pipeline Run Metrics
	RunDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cultivar_run_duration_seconds",
			Help:    "Duration of complete pipeline runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cultivar_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"status"},
	)

	RunLastSuccess = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cultivar_run_last_success_timestamp_seconds",
			Help: "Unix time of the last successful pipeline run",
		},
	)

	// Stage Metrics
	StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cultivar_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"stage"},
	)

	StageRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cultivar_stage_runs_total",
			Help: "Total number of stage executions by status (ok, failed, skipped)",
		},
		[]string{"stage", "status"},
	)

	StageFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cultivar_stage_failures_total",
			Help: "Total number of failed stage executions",
		},
		[]string{"stage"},
	)

	// Output Metrics
	TableRows = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cultivar_table_rows",
			Help: "Rows in each output table after the last run",
		},
		[]string{"table"},
	)

	ModelQuality = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cultivar_model_quality",
			Help: "Held-out quality metric of each trained model (accuracy, auc, r2, mae, rmse)",
		},
		[]string{"model", "metric"},
	)

	RecommendationsGenerated = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cultivar_recommendations_generated_total",
			Help: "Total number of customer recommendations generated",
		},
	)

	AssociationRules = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cultivar_association_rules",
			Help: "Association rules mined in the last run",
		},
	)

	CrossSellOpportunities = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cultivar_cross_sell_opportunities",
			Help: "Cross-sell opportunities found in the last run",
		},
	)

	// Sink Metrics
	SinkWriteDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cultivar_sink_write_duration_seconds",
			Help:    "Duration of output table writes per sink",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"},
	)

	SinkWriteErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cultivar_sink_write_errors_total",
			Help: "Total number of failed sink writes",
		},
		[]string{"sink"},
	)

	// Snapshot Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cultivar_snapshot_cache_hits_total",
			Help: "Total number of input snapshot cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cultivar_snapshot_cache_misses_total",
			Help: "Total number of input snapshot cache misses",
		},
		[]string{"backend"},
	)

	// System Metrics
	AppInfo = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cultivar_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRun records a complete pipeline run.
func RecordRun(duration time.Duration, err error) {
	RunDuration.Observe(duration.Seconds())
	if err != nil {
		RunsTotal.WithLabelValues(StatusFailed).Inc()
		return
	}
	RunsTotal.WithLabelValues(StatusOK).Inc()
	RunLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordStage records one stage execution. Skipped stages record no
// duration.
func RecordStage(stage, status string, duration time.Duration) {
	StageRuns.WithLabelValues(stage, status).Inc()
	switch status {
	case StatusSkipped:
		return
	case StatusFailed:
		StageFailures.WithLabelValues(stage).Inc()
	}
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordTableRows sets the row gauge of an output table.
func RecordTableRows(table string, rows int) {
	TableRows.WithLabelValues(table).Set(float64(rows))
}

// RecordModel sets the quality gauges of a trained model.
func RecordModel(model string, quality map[string]float64) {
	names := make([]string, 0, len(quality))
	for k := range quality {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		ModelQuality.WithLabelValues(model, k).Set(quality[k])
	}
}

// RecordRecommendations records the recommendation stage outputs.
func RecordRecommendations(recommendations, rules, crossSell int) {
	RecommendationsGenerated.Add(float64(recommendations))
	AssociationRules.Set(float64(rules))
	CrossSellOpportunities.Set(float64(crossSell))
}

// RecordSinkWrite records one sink write.
func RecordSinkWrite(sink string, duration time.Duration, err error) {
	SinkWriteDuration.WithLabelValues(sink).Observe(duration.Seconds())
	if err != nil {
		SinkWriteErrors.WithLabelValues(sink).Inc()
	}
}

// RecordCacheLookup records a snapshot cache lookup.
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
	} else {
		CacheMisses.WithLabelValues(backend).Inc()
	}
}

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// WriteTextfile writes every collector in Prometheus text format to path,
// atomically, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Handler serves the pipeline registry for scraping by the scheduled runner.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
