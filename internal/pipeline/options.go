// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package pipeline

import (
	"github.com/tomtom215/cultivar/internal/config"
	"github.com/tomtom215/cultivar/internal/modelstore"
	"github.com/tomtom215/cultivar/internal/predict"
	"github.com/tomtom215/cultivar/internal/recommend"
	"github.com/tomtom215/cultivar/internal/segment"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSinks replaces the sinks opened from the output configuration.
// The pipeline does not close sinks passed this way.
func WithSinks(sinks ...Sink) Option {
	return func(p *Pipeline) {
		p.sinks = sinks
	}
}

// WithModelStore persists trained models after each run.
func WithModelStore(store *modelstore.Store) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithProgress reports recommendation progress as customers complete.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithoutReport disables the JSON run report and the metrics textfile.
func WithoutReport() Option {
	return func(p *Pipeline) {
		p.noReport = true
	}
}

func segmentConfig(cfg *config.Config) segment.Config {
	return segment.Config{
		Clusters:             cfg.Segment.Clusters,
		Inits:                cfg.Segment.Inits,
		MaxIterations:        cfg.Segment.MaxIterations,
		Tolerance:            cfg.Segment.Tolerance,
		EvaluateMinK:         cfg.Segment.EvaluateMinK,
		EvaluateMaxK:         cfg.Segment.EvaluateMaxK,
		SilhouetteSampleSize: cfg.Segment.SilhouetteSampleSize,
		Seed:                 cfg.Seed,
	}
}

func predictConfig(cfg *config.Config) predict.Config {
	pc := predict.DefaultConfig()
	pc.ChurnThresholdDays = cfg.Predict.ChurnThresholdDays
	pc.TestFraction = cfg.Predict.TestFraction
	pc.Boost = predict.BoostConfig{
		Trees:           cfg.Predict.Trees,
		LearningRate:    cfg.Predict.LearningRate,
		MaxDepth:        cfg.Predict.MaxDepth,
		Subsample:       cfg.Predict.Subsample,
		MinSamplesSplit: cfg.Predict.MinSamplesSplit,
		MinSamplesLeaf:  cfg.Predict.MinSamplesLeaf,
		Seed:            cfg.Seed,
	}
	return pc
}

func recommendConfig(cfg *config.Config) *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.Weights = recommend.AlgorithmWeights{
		Collaborative: cfg.Recommend.CollaborativeWeight,
		Association:   cfg.Recommend.AssociationWeight,
	}
	rc.Collaborative.Neighbors = cfg.Recommend.Neighbors
	rc.Association = recommend.AssociationConfig{
		MinSupport:    cfg.Recommend.MinSupport,
		MinConfidence: cfg.Recommend.MinConfidence,
	}
	rc.Limits = recommend.LimitsConfig{
		TargetCustomers:     cfg.Recommend.TargetCustomers,
		CandidatesPerMethod: cfg.Recommend.CandidatesPerMethod,
		TopN:                cfg.Recommend.TopN,
		Workers:             cfg.Recommend.Workers,
	}
	rc.ConfidenceCap = cfg.Recommend.ConfidenceCap
	rc.CrossSell = recommend.CrossSellConfig{
		MaxCategories: cfg.Recommend.CrossSellMaxCategories,
		Uplift:        cfg.Recommend.CrossSellUplift,
	}
	return rc
}
