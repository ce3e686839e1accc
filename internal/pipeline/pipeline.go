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
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/cache"
	"github.com/tomtom215/cultivar/internal/config"
	"github.com/tomtom215/cultivar/internal/export"
	"github.com/tomtom215/cultivar/internal/features"
	"github.com/tomtom215/cultivar/internal/ingest"
	"github.com/tomtom215/cultivar/internal/logging"
	"github.com/tomtom215/cultivar/internal/metrics"
	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/modelstore"
	"github.com/tomtom215/cultivar/internal/predict"
	"github.com/tomtom215/cultivar/internal/recommend"
	"github.com/tomtom215/cultivar/internal/recommend/algorithms"
	"github.com/tomtom215/cultivar/internal/segment"
	"github.com/tomtom215/cultivar/internal/validation"
)

// ErrSinkFailed is returned when at least one sink could not be written.
var ErrSinkFailed = errors.New("pipeline: sink write failed")

// ErrNoSnapshot is returned by a StaticLoader that holds no snapshot.
var ErrNoSnapshot = errors.New("pipeline: no snapshot")

// SnapshotLoader supplies the input snapshot. ingest.Loader implements it.
type SnapshotLoader interface {
	Load(ctx context.Context) (*models.Snapshot, *ingest.LoadStats, error)
}

// StaticLoader serves a snapshot that is already in memory, such as one
// produced by the synthetic data generator.
type StaticLoader struct {
	Snapshot *models.Snapshot
}

// Load returns the wrapped snapshot.
func (l StaticLoader) Load(ctx context.Context) (*models.Snapshot, *ingest.LoadStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if l.Snapshot == nil {
		return nil, nil, ErrNoSnapshot
	}
	now := time.Now()
	return l.Snapshot, &ingest.LoadStats{
		Fingerprint:  l.Snapshot.Fingerprint,
		Transactions: len(l.Snapshot.Transactions),
		Customers:    len(l.Snapshot.Customers),
		StartTime:    now,
		EndTime:      now,
	}, nil
}

// Pipeline runs the four stages in order and writes their tables to the
// configured sinks. A Pipeline may be run repeatedly; each Run reloads the
// snapshot and replaces every output.
type Pipeline struct {
	cfg      *config.Config
	loader   SnapshotLoader
	sinks    []Sink
	store    *modelstore.Store
	progress func(done, total int)
	noReport bool
	logger   zerolog.Logger
}

// New creates a Pipeline.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.Config, loader SnapshotLoader, logger zerolog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}
	if loader == nil {
		return nil, fmt.Errorf("pipeline: nil loader")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid config: %w", err)
	}

	p := &Pipeline{
		cfg:    cfg,
		loader: loader,
		logger: logger.With().Str("component", "pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewLoader builds the ingest loader for the configured input and cache.
// The returned close function releases the cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLoader(cfg *config.Config, logger zerolog.Logger) (*ingest.Loader, func() error, error) {
	c, err := cache.NewCacher(cache.Config{
		Backend: cache.Backend(cfg.Cache.Backend),
		Dir:     cfg.Cache.Dir,
		TTL:     cfg.Cache.TTL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	src := ingest.Source{
		TransactionsPath:  cfg.Input.TransactionsPath,
		CustomersPath:     cfg.Input.CustomersPath,
		TransactionsTable: cfg.Input.TransactionsTable,
		CustomersTable:    cfg.Input.CustomersTable,
	}
	return ingest.NewLoader(src, c, logger), c.Close, nil
}

// run holds the state of one Run call.
type run struct {
	p   *Pipeline
	ctx context.Context
	res *Result
	log zerolog.Logger

	snapshot *models.Snapshot
	table    *models.CustomerTable
	seg      *segment.Result
	pred     *predict.Result
	rec      *recommendation
}

// recommendation is the stage 4 output.
type recommendation struct {
	recs      []models.Recommendation
	top       []models.Recommendation
	rules     []models.AssociationRule
	crossSell []models.CrossSell
	summary   models.RecommendationSummary
}

// Run executes one pipeline run. The returned Result is never nil and
// records every stage that ran, including the failing one.
//
// Loading and feature building are fatal. Segmentation, prediction and
// recommendation failures are recorded and dependent work is skipped; the
// tables that could be built are still written. Run returns an error when
// any stage or sink failed, or when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := logging.GenerateRunID()
	ctx = logging.ContextWithLogger(ctx, p.logger)
	ctx = logging.ContextWithRunID(ctx, runID)

	r := &run{
		p:   p,
		ctx: ctx,
		res: &Result{RunID: runID, StartedAt: time.Now().UTC()},
		log: *logging.Ctx(ctx),
	}
	r.log.Info().Msg("Pipeline run started")

	err := r.execute()

	r.res.FinishedAt = time.Now().UTC()
	r.res.Duration = r.res.FinishedAt.Sub(r.res.StartedAt)
	if err != nil {
		r.res.Error = err.Error()
	}
	metrics.RecordRun(r.res.Duration, err)

	if !p.noReport && r.table != nil {
		if reportErr := r.writeReport(); reportErr != nil {
			r.log.Warn().Err(reportErr).Msg("failed to write run report")
		}
	}

	if err != nil {
		r.log.Error().Err(err).Dur("duration", r.res.Duration).Msg("Pipeline run failed")
		return r.res, err
	}
	r.log.Info().
		Dur("duration", r.res.Duration).
		Int("customers", len(r.table.Rows)).
		Int("tables", len(r.res.Tables)).
		Msg("Pipeline run completed")
	return r.res, nil
}

func (r *run) execute() error {
	if err := r.stage(StageLoad, 0, r.load); err != nil {
		return err
	}
	if err := r.stage(StageFeatures, len(r.snapshot.Transactions), r.features); err != nil {
		return err
	}

	var failed []string
	if err := r.stage(StageSegment, len(r.table.Rows), r.segment); err != nil {
		if r.ctx.Err() != nil {
			return r.ctx.Err()
		}
		failed = append(failed, StageSegment)
	}

	if r.seg == nil {
		r.skip(StagePredict, "segmentation failed; R/F/M scores are prediction features")
	} else if err := r.stage(StagePredict, len(r.table.Rows), r.predict); err != nil {
		if r.ctx.Err() != nil {
			return r.ctx.Err()
		}
		failed = append(failed, StagePredict)
	}

	if err := r.stage(StageRecommend, len(r.table.Rows), r.recommend); err != nil {
		if r.ctx.Err() != nil {
			return r.ctx.Err()
		}
		failed = append(failed, StageRecommend)
	}

	if err := r.stage(StageExport, len(r.table.Rows), r.export); err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("pipeline: stages failed: %v", failed)
	}
	return nil
}

// stage runs fn as the named stage, recording its status, duration and row
// count in the result, the log and the metrics.
func (r *run) stage(name string, input int, fn func(sl *logging.StageLogger) (int, error)) error {
	sl := logging.NewStageLogger(r.ctx, name)
	if err := r.ctx.Err(); err != nil {
		return err
	}
	sl.Started(input)

	start := time.Now()
	rows, err := fn(sl)
	elapsed := time.Since(start)

	sr := StageResult{Name: name, Rows: rows, Duration: elapsed, Status: StatusOK}
	if err != nil {
		sr.Status = StatusFailed
		sr.Error = err.Error()
		sl.Failed(err, elapsed)
	} else {
		sl.Completed(rows, elapsed)
	}
	r.res.Stages = append(r.res.Stages, sr)
	metrics.RecordStage(name, string(sr.Status), elapsed)

	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	return nil
}

func (r *run) skip(name, reason string) {
	logging.NewStageLogger(r.ctx, name).Skipped(reason)
	r.res.Stages = append(r.res.Stages, StageResult{Name: name, Status: StatusSkipped, Error: reason})
	metrics.RecordStage(name, metrics.StatusSkipped, 0)
}

// warn attaches a degraded sub-step to the most recent stage.
func (r *run) warn(msg string) {
	if n := len(r.res.Stages); n > 0 {
		r.res.Stages[n-1].Warnings = append(r.res.Stages[n-1].Warnings, msg)
	}
}

func (r *run) load(sl *logging.StageLogger) (int, error) {
	snap, st, err := r.p.loader.Load(r.ctx)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateRows(models.TableTransactions, snap.Transactions); err != nil {
		return 0, err
	}
	if err := validation.ValidateRows(models.TableCustomers, snap.Customers); err != nil {
		return 0, err
	}

	r.snapshot = snap
	r.res.Load = st
	r.res.Fingerprint = snap.Fingerprint
	if backend := r.p.cfg.Cache.Backend; st != nil && backend != string(cache.BackendNone) {
		metrics.RecordCacheLookup(backend, st.CacheHit)
	}
	if st != nil {
		sl.Logger().Debug().
			Bool("cache_hit", st.CacheHit).
			Float64("records_per_second", st.RecordsPerSecond()).
			Msg("snapshot loaded")
	}
	return len(snap.Transactions), nil
}

func (r *run) features(sl *logging.StageLogger) (int, error) {
	fr, err := features.Build(r.ctx, r.snapshot)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateRows(models.TableScoredCustomers, fr.Table.Rows); err != nil {
		return 0, err
	}

	r.table = fr.Table
	r.res.Customers = fr.Table
	r.res.Features = &fr.Stats
	r.res.AnalysisDate = fr.Table.AnalysisDate

	st := fr.Stats
	if st.DuplicateOrders > 0 || st.NegativeMonetary > 0 || st.CustomersNoTransaction > 0 || st.OrphanTransactions > 0 {
		sl.Logger().Warn().
			Int("duplicate_orders", st.DuplicateOrders).
			Int("negative_monetary_floored", st.NegativeMonetary).
			Int("customers_without_transactions", st.CustomersNoTransaction).
			Int("orphan_transactions", st.OrphanTransactions).
			Msg("input data adjusted")
	}
	return len(fr.Table.Rows), nil
}

func (r *run) segment(sl *logging.StageLogger) (int, error) {
	res, err := segment.New(segmentConfig(r.p.cfg), *sl.Logger()).Run(r.ctx, r.table)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateRows(models.TableScoredCustomers, r.table.Rows); err != nil {
		return 0, err
	}
	if res.ClusterErr != nil {
		r.warn("k-means: " + res.ClusterErr.Error())
	}
	r.seg = res
	r.res.Segmentation = res
	return len(res.SegmentSummary), nil
}

func (r *run) predict(sl *logging.StageLogger) (int, error) {
	res, err := predict.New(predictConfig(r.p.cfg), *sl.Logger()).Run(r.ctx, r.table)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateRows(models.TableScoredCustomers, r.table.Rows); err != nil {
		return 0, err
	}
	if res.ChurnErr != nil {
		r.warn("churn model: " + res.ChurnErr.Error())
	}
	if res.CLVErr != nil {
		r.warn("clv model: " + res.CLVErr.Error())
	}

	if r.p.store != nil {
		if err := r.persistModels(res); err != nil {
			return 0, err
		}
	}
	for _, m := range res.Models {
		metrics.RecordModel(m.Model, m.Metrics)
	}

	r.pred = res
	r.res.Models = res.Models
	r.res.Impact = &res.Impact
	return len(res.Models), nil
}

// persistModels saves every trained model and prunes old versions, then
// stamps the stored version and checksum onto the model summaries.
func (r *run) persistModels(res *predict.Result) error {
	trained := map[string]struct {
		data     any
		features int
	}{}
	if res.Churn != nil {
		trained[predict.ModelChurn] = struct {
			data     any
			features int
		}{res.Churn, len(res.Churn.Features.Names)}
	}
	if res.CLV != nil {
		trained[predict.ModelCLV] = struct {
			data     any
			features int
		}{res.CLV, len(res.CLV.Features.Names)}
	}

	for i := range res.Models {
		summary := &res.Models[i]
		model, ok := trained[summary.Model]
		if !ok {
			continue
		}
		meta, err := r.p.store.Save(r.ctx, summary.Model, model.data, modelstore.Metadata{
			TrainedAt:          r.res.StartedAt,
			TrainingSamples:    summary.TrainingSamples,
			Features:           model.features,
			Metrics:            summary.Metrics,
			TrainingDurationMS: summary.TrainingDuration.Milliseconds(),
		})
		if err != nil {
			return fmt.Errorf("persist %s model: %w", summary.Model, err)
		}
		summary.Version = meta.Version
		summary.Checksum = meta.Checksum

		pruned, err := r.p.store.Prune(r.ctx, summary.Model, r.p.cfg.Output.KeepModels)
		if err != nil {
			return fmt.Errorf("prune %s models: %w", summary.Model, err)
		}
		r.log.Debug().
			Str("model", summary.Model).
			Int("version", meta.Version).
			Int64("size_bytes", meta.SizeBytes).
			Int("pruned", pruned).
			Msg("model persisted")
	}
	return nil
}

func (r *run) recommend(sl *logging.StageLogger) (int, error) {
	cfg := recommendConfig(r.p.cfg)
	engine, err := recommend.NewEngine(cfg, *sl.Logger())
	if err != nil {
		return 0, err
	}

	assoc := algorithms.NewAssociationRules(algorithms.AssociationConfig{
		MinSupport:    cfg.Association.MinSupport,
		MinConfidence: cfg.Association.MinConfidence,
	})
	engine.RegisterAlgorithm(algorithms.NewJaccardCF(algorithms.JaccardConfig{K: cfg.Collaborative.Neighbors}))
	engine.RegisterAlgorithm(assoc)

	if err := engine.Train(r.ctx, recommend.NewMatrix(r.table)); err != nil {
		return 0, err
	}
	failed := engine.Status().Failed
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.warn(name + ": " + failed[name])
	}

	targets := recommend.TargetCustomers(r.table, cfg.Limits.TargetCustomers)
	var progress func()
	if r.p.progress != nil {
		var done atomic.Int64
		total := len(targets)
		progress = func() { r.p.progress(int(done.Add(1)), total) }
	}

	recs, err := engine.RecommendAll(r.ctx, targets, progress)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateRows(models.TableRecommendations, recs); err != nil {
		return 0, err
	}

	out := &recommendation{recs: recs}
	if assoc.IsTrained() {
		out.rules = assoc.Rules()
	}
	if err := validation.ValidateRows(models.TableAssociationRules, out.rules); err != nil {
		return 0, err
	}
	out.crossSell = recommend.CrossSell(r.table.Rows, recs, cfg.CrossSell)
	if err := validation.ValidateRows(models.TableCrossSell, out.crossSell); err != nil {
		return 0, err
	}
	out.top = recommend.TopPerCustomer(recs, 3)
	out.summary = recommend.Summarize(len(r.table.Rows), len(targets), recs, len(out.crossSell), len(out.rules))

	metrics.RecordRecommendations(len(recs), len(out.rules), len(out.crossSell))

	r.rec = out
	r.res.Recommended = recs
	r.res.Rules = out.rules
	r.res.CrossSell = out.crossSell
	r.res.Recommendations = &out.summary
	return len(recs), nil
}

func (r *run) export(sl *logging.StageLogger) (int, error) {
	tables, err := r.tables()
	if err != nil {
		return 0, err
	}
	r.res.OutputTables = tables
	rows := 0
	for _, t := range tables {
		r.res.Tables = append(r.res.Tables, TableCount{Name: t.Name, Rows: len(t.Rows)})
		metrics.RecordTableRows(t.Name, len(t.Rows))
		rows += len(t.Rows)
	}

	sinks := r.p.sinks
	if sinks == nil {
		opened, err := OpenSinks(r.ctx, r.p.cfg.Output, *sl.Logger())
		if err != nil {
			return 0, err
		}
		defer closeSinks(opened, r.log)
		sinks = opened
	}

	r.res.Sinks = writeSinks(r.ctx, sinks, tables, *sl.Logger())
	var failed []string
	for _, s := range r.res.Sinks {
		if s.Status == StatusFailed {
			failed = append(failed, s.Name)
		}
	}
	if len(failed) > 0 {
		return rows, fmt.Errorf("%w: %v", ErrSinkFailed, failed)
	}
	return rows, nil
}

// tables renders every output table the completed stages support, in a
// fixed order.
func (r *run) tables() ([]*models.Table, error) {
	out := []*models.Table{models.ScoredCustomersTable(r.table)}

	if r.seg != nil {
		out = append(out, models.GroupSummaryTable(models.TableSegmentSummary, "RFM_Segment", r.seg.SegmentSummary))
		if r.seg.ClusterErr == nil {
			out = append(out, models.GroupSummaryTable(models.TableClusterSummary, "Cluster_Name", r.seg.ClusterSummary))
		}
	}

	if r.pred != nil {
		projections := []struct {
			name    string
			rows    []models.CustomerScore
			columns []string
		}{
			{models.TableHighRisk, r.pred.HighRisk, predict.HighRiskColumns},
			{models.TableHighValue, r.pred.HighValue, predict.HighValueColumns},
			{models.TableActionPriority, r.pred.ActionPriority, predict.ActionPriorityColumns},
		}
		for _, pr := range projections {
			t, err := models.ProjectCustomers(pr.name, pr.rows, pr.columns...)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		out = append(out, models.ModelSummaryTable(r.pred.Models), models.ImpactSummaryTable(r.pred.Impact))
	}

	if r.rec != nil {
		out = append(out,
			models.RecommendationsTable(models.TableRecommendations, r.rec.recs),
			models.RecommendationsTable(models.TableTopRecommendation, r.rec.top),
			models.AssociationRulesTable(r.rec.rules),
			models.CrossSellTable(r.rec.crossSell),
			models.RecommendationSummaryTable(r.rec.summary),
		)
	}
	return out, nil
}

// writeReport writes the JSON run report and, when configured, the metrics
// textfile.
func (r *run) writeReport() error {
	path := filepath.Join(r.p.cfg.Output.Dir, ReportName)
	if err := export.WriteJSON(path, r.res); err != nil {
		return err
	}
	r.res.ReportPath = path

	if tf := r.p.cfg.Metrics.TextfilePath; tf != "" {
		if err := metrics.WriteTextfile(tf); err != nil {
			return err
		}
		r.res.MetricsTextfile = tf
	}
	return nil
}
