// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cultivar/internal/models"
)

var (
	// ErrInsufficientData is returned when a model has too few rows (or too
	// few of a class) to split and train.
	ErrInsufficientData = errors.New("predict: insufficient data")

	// ErrNotTrained is returned when scoring with a model that was never fitted.
	ErrNotTrained = errors.New("predict: model not trained")
)

// Config tunes the prediction stage.
type Config struct {
	ChurnThresholdDays int
	TestFraction       float64
	Boost              BoostConfig
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		ChurnThresholdDays: 90,
		TestFraction:       0.2,
		Boost:              DefaultBoostConfig(),
	}
}

// Result carries the trained models and the stage 3 report tables. Scored
// columns are written in place on the input table.
type Result struct {
	Churn *ChurnModel `json:"-"`
	CLV   *CLVModel   `json:"-"`

	// ChurnErr and CLVErr record a failed predictor. Its columns stay null.
	ChurnErr error `json:"-"`
	CLVErr   error `json:"-"`

	Models         []models.ModelSummary  `json:"models"`
	HighRisk       []models.CustomerScore `json:"-"`
	HighValue      []models.CustomerScore `json:"-"`
	ActionPriority []models.CustomerScore `json:"-"`
	Impact         models.ImpactSummary   `json:"impact"`
	PriorityScored bool                   `json:"priority_scored"`
}

// Predictor runs stage 3.
type Predictor struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a Predictor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) *Predictor {
	return &Predictor{
		cfg:    cfg,
		logger: logger.With().Str("component", "predict").Logger(),
	}
}

// Run labels churn, scores purchase timing, trains both models and blends
// priority. A failing model only blanks its own columns; Run returns an
// error only for an empty table or a cancelled context.
func (p *Predictor) Run(ctx context.Context, table *models.CustomerTable) (*Result, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("predict: no customers to score")
	}
	rows := table.Rows
	res := &Result{}

	LabelChurn(rows, p.cfg.ChurnThresholdDays)
	for i := range rows {
		ScoreTiming(&rows[i])
	}

	churn, churnSummary, err := TrainChurn(ctx, table, p.cfg)
	if err == nil {
		err = churn.Score(rows)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res.ChurnErr = err
		churnSummary = nil
		p.logger.Warn().Err(err).Msg("churn model failed; churn columns left empty")
	} else {
		res.Churn = churn
		p.logger.Info().
			Float64("accuracy", churnSummary.Metrics["accuracy"]).
			Float64("auc", churnSummary.Metrics["auc"]).
			Int("train", churnSummary.TrainingSamples).
			Int("test", churnSummary.TestSamples).
			Dur("elapsed", churnSummary.TrainingDuration).
			Msg("churn model trained")
	}

	clv, clvSummary, err := TrainCLV(ctx, table, p.cfg)
	if err == nil {
		err = clv.Score(rows)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res.CLVErr = err
		clvSummary = nil
		p.logger.Warn().Err(err).Msg("clv model failed; clv columns left empty")
	} else {
		res.CLV = clv
		p.logger.Info().
			Float64("r2", clvSummary.Metrics["r2"]).
			Float64("mae", clvSummary.Metrics["mae"]).
			Float64("rmse", clvSummary.Metrics["rmse"]).
			Int("train", clvSummary.TrainingSamples).
			Dur("elapsed", clvSummary.TrainingDuration).
			Msg("clv model trained")
	}

	res.PriorityScored = ScorePriority(rows)
	res.Models = ModelSummaries(churnSummary, clvSummary)
	res.HighRisk = HighRisk(rows)
	res.HighValue = HighValue(rows)
	res.ActionPriority = ActionPriority(rows)
	res.Impact = Impact(rows, len(res.HighRisk), len(res.HighValue))

	p.logger.Debug().
		Int("high_risk", len(res.HighRisk)).
		Int("high_value", len(res.HighValue)).
		Int("churned", res.Impact.ChurnedCustomers).
		Bool("priority", res.PriorityScored).
		Msg("prediction complete")

	return res, nil
}
