// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// Export column sets.
var (
	HighRiskColumns = []string{
		"Customer_ID", "RFM_Segment", "Monetary", "Predicted_CLV",
		"Churn_Probability", "Churn_Risk_Level", "Customer_Priority",
	}
	HighValueColumns = []string{
		"Customer_ID", "RFM_Segment", "Monetary", "Predicted_CLV",
		"Churn_Probability", "CLV_Category",
	}
	ActionPriorityColumns = []string{
		"Customer_ID", "RFM_Segment", "Monetary", "Predicted_CLV",
		"Churn_Probability", "Purchase_Timing_Status", "Customer_Priority",
		"Customer_Value_Score",
	}
)

func isHighRisk(level string) bool {
	return level == models.RiskHigh || level == models.RiskCritical
}

// HighRisk returns High/Critical risk customers with Monetary above the
// median, by Monetary descending. Empty without churn scores.
func HighRisk(rows []models.CustomerScore) []models.CustomerScore {
	monetary := make([]float64, len(rows))
	for i := range rows {
		monetary[i] = rows[i].Monetary
	}
	median := stats.Median(monetary)

	var out []models.CustomerScore
	for i := range rows {
		if rows[i].ChurnProbability != nil && isHighRisk(rows[i].ChurnRiskLevel) && rows[i].Monetary > median {
			out = append(out, rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Monetary > out[j].Monetary })
	return out
}

func predictedCLVs(rows []models.CustomerScore) []float64 {
	var clvs []float64
	for i := range rows {
		if rows[i].PredictedCLV != nil {
			clvs = append(clvs, *rows[i].PredictedCLV)
		}
	}
	return clvs
}

// HighValue returns customers with Predicted_CLV above the 90th percentile,
// by Predicted_CLV descending. Empty without CLV scores.
func HighValue(rows []models.CustomerScore) []models.CustomerScore {
	clvs := predictedCLVs(rows)
	if len(clvs) == 0 {
		return nil
	}
	p90 := stats.Quantile(clvs, 0.9)

	var out []models.CustomerScore
	for i := range rows {
		if rows[i].PredictedCLV != nil && *rows[i].PredictedCLV > p90 {
			out = append(out, rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].PredictedCLV > *out[j].PredictedCLV })
	return out
}

// ActionPriority returns every scored customer by Customer_Value_Score
// descending. Empty when priority could not be computed.
func ActionPriority(rows []models.CustomerScore) []models.CustomerScore {
	var out []models.CustomerScore
	for i := range rows {
		if rows[i].CustomerValueScore != nil {
			out = append(out, rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].CustomerValueScore > *out[j].CustomerValueScore })
	return out
}

// Impact summarizes the prediction stage.
func Impact(rows []models.CustomerScore, highRisk, highValue int) models.ImpactSummary {
	s := models.ImpactSummary{
		TotalCustomers:     len(rows),
		HighRiskCustomers:  highRisk,
		HighValueCustomers: highValue,
	}
	for i := range rows {
		r := &rows[i]
		if r.IsChurned {
			s.ChurnedCustomers++
		}
		if r.PredictedCLV != nil {
			s.TotalPredictedCLV += *r.PredictedCLV
		}
		if r.PurchaseTimingStatus == models.TimingDueSoon {
			s.DueSoonCustomers++
		}
		if r.CustomerPriority == models.PriorityCritical {
			s.CriticalCustomers++
		}
	}
	if s.TotalCustomers > 0 {
		s.ChurnedShare = float64(s.ChurnedCustomers) / float64(s.TotalCustomers)
	}
	return s
}

// ModelSummaries returns the summaries in a fixed model order, skipping
// models that were not trained.
func ModelSummaries(summaries ...*models.ModelSummary) []models.ModelSummary {
	var out []models.ModelSummary
	for _, s := range summaries {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}
