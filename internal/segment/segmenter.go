// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package segment implements stage 2: RFM quintile scoring with a rule-based
// segment table, and an independent K-Means clustering over standardized
// behavioural features.
package segment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// Config tunes the segmentation stage.
type Config struct {
	Clusters             int
	Inits                int
	MaxIterations        int
	Tolerance            float64
	EvaluateMinK         int
	EvaluateMaxK         int
	SilhouetteSampleSize int
	Seed                 int64
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Clusters:             5,
		Inits:                10,
		MaxIterations:        300,
		Tolerance:            1e-4,
		EvaluateMinK:         2,
		EvaluateMaxK:         10,
		SilhouetteSampleSize: 2000,
		Seed:                 42,
	}
}

// Result carries the stage 2 report tables. The scored rows are updated in
// place on the input table.
type Result struct {
	SegmentSummary []models.GroupSummary `json:"segment_summary"`
	ClusterSummary []models.GroupSummary `json:"cluster_summary"`
	Evaluation     []models.KEvaluation  `json:"evaluation"`
	Inertia        float64               `json:"inertia"`
	ClusterNames   []string              `json:"cluster_names"`

	// ClusterErr is set when K-Means could not run; RFM scoring still applies.
	ClusterErr error `json:"-"`
}

// Segmenter runs stage 2.
type Segmenter struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a Segmenter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) *Segmenter {
	return &Segmenter{
		cfg:    cfg,
		logger: logger.With().Str("component", "segment").Logger(),
	}
}

// clusterFeatures are the K-Means inputs, in column order.
var clusterFeatures = []string{
	"Recency", "Frequency", "Monetary", "Avg_Order_Value", "Customer_Age_Days", "Purchase_Rate",
}

func featureMatrix(rows []models.CustomerScore) [][]float64 {
	x := make([][]float64, len(rows))
	for i := range rows {
		r := &rows[i]
		x[i] = []float64{
			float64(r.Recency), float64(r.Frequency), r.Monetary,
			r.AvgOrderValue, float64(r.CustomerAgeDays), r.PurchaseRate,
		}
	}
	return x
}

// Run scores and labels every row of table.
func (s *Segmenter) Run(ctx context.Context, table *models.CustomerTable) (*Result, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("segment: no customers to score")
	}
	rows := table.Rows
	res := &Result{}

	ScoreRFM(rows)
	res.SegmentSummary = Summarize(rows, func(r *models.CustomerScore) string { return r.RFMSegment })
	s.logger.Debug().Int("segments", len(res.SegmentSummary)).Msg("rfm scoring complete")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x := stats.Standardize(featureMatrix(rows))
	kcfg := KMeansConfig{
		K:             s.cfg.Clusters,
		Inits:         s.cfg.Inits,
		MaxIterations: s.cfg.MaxIterations,
		Tolerance:     s.cfg.Tolerance,
		Seed:          s.cfg.Seed,
	}

	start := time.Now()
	km, err := KMeans(ctx, x, kcfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res.ClusterErr = err
		s.logger.Warn().Err(err).Msg("k-means skipped; cluster columns left empty")
		return res, nil
	}

	res.Inertia = km.Inertia
	res.ClusterNames = NameClusters(rows, km.Labels, s.cfg.Clusters)
	for i := range rows {
		c := km.Labels[i]
		rows[i].Cluster = &c
		rows[i].ClusterName = res.ClusterNames[c]
	}
	res.ClusterSummary = Summarize(rows, func(r *models.CustomerScore) string { return r.ClusterName })

	s.logger.Debug().
		Int("k", s.cfg.Clusters).
		Int("iterations", km.Iterations).
		Float64("inertia", km.Inertia).
		Dur("elapsed", time.Since(start)).
		Strs("features", clusterFeatures).
		Msg("k-means complete")

	if s.cfg.EvaluateMaxK >= s.cfg.EvaluateMinK && s.cfg.EvaluateMinK >= 2 {
		eval, err := Evaluate(ctx, x, kcfg, s.cfg.EvaluateMinK, s.cfg.EvaluateMaxK, s.cfg.SilhouetteSampleSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn().Err(err).Msg("cluster evaluation incomplete")
		}
		res.Evaluation = eval
	}

	return res, nil
}
