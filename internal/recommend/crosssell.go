// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package recommend

import (
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// CrossSell selects customers with a narrow basket and above-median
// Predicted_CLV and pairs each with their top recommendation.
//
// Customers qualify when they bought fewer than cfg.MaxCategories distinct
// categories, their Predicted_CLV exceeds the median over all predicted
// customers, and they received at least one recommendation. Potential value
// is cfg.Uplift x Predicted_CLV. The result is sorted by potential value,
// highest first. Without any Predicted_CLV or recommendations it is empty.
//
// recs must list each customer's recommendations best first.
func CrossSell(rows []models.CustomerScore, recs []models.Recommendation, cfg CrossSellConfig) []models.CrossSell {
	if len(recs) == 0 {
		return nil
	}

	clvs := make([]float64, 0, len(rows))
	for i := range rows {
		if rows[i].PredictedCLV != nil {
			clvs = append(clvs, *rows[i].PredictedCLV)
		}
	}
	if len(clvs) == 0 {
		return nil
	}
	median := stats.Median(clvs)

	top := make(map[string]models.Recommendation, len(recs))
	for _, r := range recs {
		if _, ok := top[r.CustomerID]; !ok {
			top[r.CustomerID] = r
		}
	}

	var out []models.CrossSell
	for i := range rows {
		r := &rows[i]
		if r.PredictedCLV == nil || *r.PredictedCLV <= median {
			continue
		}
		distinct := r.DistinctCategories()
		if distinct >= cfg.MaxCategories {
			continue
		}
		rec, ok := top[r.CustomerID]
		if !ok {
			continue
		}
		clv := *r.PredictedCLV
		out = append(out, models.CrossSell{
			CustomerID:          r.CustomerID,
			RFMSegment:          r.RFMSegment,
			CurrentCategories:   distinct,
			PredictedCLV:        clv,
			RecommendedCategory: rec.RecommendedCategory,
			Confidence:          rec.Confidence,
			PotentialValue:      cfg.Uplift * clv,
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].PotentialValue > out[b].PotentialValue })
	return out
}
