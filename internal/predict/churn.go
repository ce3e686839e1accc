// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"context"
	"time"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// Model names used for summaries and persistence.
const (
	ModelChurn = "churn"
	ModelCLV   = "clv"
)

// topFeatures is how many importances a model summary carries.
const topFeatures = 10

// ChurnModel is a trained churn classifier.
type ChurnModel struct {
	Ensemble      *Ensemble
	Features      FeatureSet
	ThresholdDays int
}

// LabelChurn sets Is_Churned = Recency > thresholdDays on every row.
func LabelChurn(rows []models.CustomerScore, thresholdDays int) {
	for i := range rows {
		rows[i].IsChurned = rows[i].Recency > thresholdDays
	}
}

// TrainChurn fits the churn classifier on a stratified split of table and
// reports accuracy and AUC on the held-out part. Rows must already carry
// Is_Churned and R/F/M scores.
func TrainChurn(ctx context.Context, table *models.CustomerTable, cfg Config) (*ChurnModel, *models.ModelSummary, error) {
	start := time.Now()
	fs := NewFeatureSet(table, true)
	x := fs.Matrix(table.Rows)

	labels := make([]bool, len(table.Rows))
	y := make([]float64, len(table.Rows))
	for i := range table.Rows {
		labels[i] = table.Rows[i].IsChurned
		if labels[i] {
			y[i] = 1
		}
	}

	train, test, err := StratifiedSplit(labels, cfg.TestFraction, cfg.Boost.Seed)
	if err != nil {
		return nil, nil, err
	}

	ens, err := Fit(ctx, pickRows(x, train), pickValues(y, train), fs.Names, LossLogistic, cfg.Boost)
	if err != nil {
		return nil, nil, err
	}

	testX := pickRows(x, test)
	probs := ens.PredictAll(testX)
	testLabels := make([]bool, len(test))
	for i, j := range test {
		testLabels[i] = labels[j]
	}

	metrics := map[string]float64{"accuracy": stats.Accuracy(probs, testLabels)}
	if auc, err := stats.AUC(probs, testLabels); err == nil {
		metrics["auc"] = auc
	}

	imp := ens.Importances()
	summary := &models.ModelSummary{
		Model:            ModelChurn,
		Metrics:          metrics,
		TrainingSamples:  len(train),
		TestSamples:      len(test),
		FeaturesUsed:     len(fs.Names),
		TopFeatures:      imp[:min(topFeatures, len(imp))],
		TrainingDuration: time.Since(start),
	}

	return &ChurnModel{Ensemble: ens, Features: fs, ThresholdDays: cfg.ChurnThresholdDays}, summary, nil
}

// Score fills Churn_Probability and Churn_Risk_Level for every row.
func (m *ChurnModel) Score(rows []models.CustomerScore) error {
	if m == nil || m.Ensemble == nil {
		return ErrNotTrained
	}
	for i := range rows {
		p := m.Ensemble.Predict(m.Features.Vector(&rows[i]))
		rows[i].ChurnProbability = &p
		rows[i].ChurnRiskLevel = RiskLevel(p)
	}
	return nil
}
