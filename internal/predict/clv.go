// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// sixMonthShare scales Predicted_CLV to the 6-month horizon.
const sixMonthShare = 0.5

// CLVModel is a trained CLV regressor. Its target is historical Monetary.
type CLVModel struct {
	Ensemble *Ensemble
	Features FeatureSet
}

// TrainCLV fits the CLV regressor on customers with Monetary > 0 and
// reports R², MAE and RMSE on a random held-out split.
func TrainCLV(ctx context.Context, table *models.CustomerTable, cfg Config) (*CLVModel, *models.ModelSummary, error) {
	start := time.Now()
	fs := NewFeatureSet(table, false)

	var x [][]float64
	var y []float64
	for i := range table.Rows {
		r := &table.Rows[i]
		if r.Monetary > 0 {
			x = append(x, fs.Vector(r))
			y = append(y, r.Monetary)
		}
	}
	if len(x) < 2 {
		return nil, nil, fmt.Errorf("%w: %d customers with positive monetary value", ErrInsufficientData, len(x))
	}

	train, test, err := RandomSplit(len(x), cfg.TestFraction, cfg.Boost.Seed)
	if err != nil {
		return nil, nil, err
	}

	ens, err := Fit(ctx, pickRows(x, train), pickValues(y, train), fs.Names, LossSquared, cfg.Boost)
	if err != nil {
		return nil, nil, err
	}

	pred := ens.PredictAll(pickRows(x, test))
	actual := pickValues(y, test)

	imp := ens.Importances()
	summary := &models.ModelSummary{
		Model: ModelCLV,
		Metrics: map[string]float64{
			"r2":   stats.R2(pred, actual),
			"mae":  stats.MAE(pred, actual),
			"rmse": stats.RMSE(pred, actual),
		},
		TrainingSamples:  len(train),
		TestSamples:      len(test),
		FeaturesUsed:     len(fs.Names),
		TopFeatures:      imp[:min(topFeatures, len(imp))],
		TrainingDuration: time.Since(start),
	}

	return &CLVModel{Ensemble: ens, Features: fs}, summary, nil
}

// Score fills Predicted_CLV (clipped at 0), CLV_6_Month and CLV_Category for
// every row. Categories are cut on the quantiles of this batch's
// predictions.
func (m *CLVModel) Score(rows []models.CustomerScore) error {
	if m == nil || m.Ensemble == nil {
		return ErrNotTrained
	}
	pred := make([]float64, len(rows))
	for i := range rows {
		pred[i] = max(m.Ensemble.Predict(m.Features.Vector(&rows[i])), 0)
	}

	qs := stats.Quantiles(pred, 0.25, 0.5, 0.75, 0.9)
	q := CLVQuantiles{P25: qs[0], P50: qs[1], P75: qs[2], P90: qs[3]}

	for i := range rows {
		v := pred[i]
		six := sixMonthShare * v
		rows[i].PredictedCLV = &v
		rows[i].CLV6Month = &six
		rows[i].CLVCategory = CLVCategory(v, q)
	}
	return nil
}
