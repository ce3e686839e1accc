// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// ScorePriority blends churn probability and predicted CLV into
// Customer_Value_Score and Customer_Priority. Rows missing either input are
// left untouched; it reports whether any row was scored.
//
// The numeric score and the priority label are computed independently and
// may disagree.
func ScorePriority(rows []models.CustomerScore) bool {
	var clvs []float64
	maxCLV := 0.0
	for i := range rows {
		if rows[i].PredictedCLV == nil || rows[i].ChurnProbability == nil {
			continue
		}
		v := *rows[i].PredictedCLV
		clvs = append(clvs, v)
		maxCLV = max(maxCLV, v)
	}
	if len(clvs) == 0 {
		return false
	}
	q := stats.Quantiles(clvs, 0.5, 0.75)

	for i := range rows {
		r := &rows[i]
		if r.PredictedCLV == nil || r.ChurnProbability == nil {
			continue
		}
		clv, churn := *r.PredictedCLV, *r.ChurnProbability

		score := 50 * churn
		if maxCLV > 0 {
			score += 50 * clv / maxCLV
		}
		r.CustomerValueScore = &score
		r.CustomerPriority = firstMatch(PriorityRules,
			PriorityInput{CLV: clv, Churn: churn, Q50: q[0], Q75: q[1]},
			models.PriorityLow)
	}
	return true
}
