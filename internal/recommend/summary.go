// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package recommend

import (
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
)

// highConfidence is the confidence above which a recommendation counts as
// high confidence in the summary.
const highConfidence = 0.7

// Summarize aggregates one recommendation run.
func Summarize(analyzed, targeted int, recs []models.Recommendation, crossSell, rules int) models.RecommendationSummary {
	s := models.RecommendationSummary{
		CustomersAnalyzed:      analyzed,
		CustomersTargeted:      targeted,
		TotalRecommendations:   len(recs),
		CrossSellOpportunities: crossSell,
		AssociationRules:       rules,
	}
	if targeted > 0 {
		s.AvgPerCustomer = float64(len(recs)) / float64(targeted)
	}
	if len(recs) == 0 {
		return s
	}

	customers := make(map[string]struct{})
	counts := make(map[string]int)
	var confSum float64
	for _, r := range recs {
		customers[r.CustomerID] = struct{}{}
		counts[r.RecommendedCategory]++
		confSum += r.Confidence
		if r.Confidence > highConfidence {
			s.HighConfidenceCount++
		}
	}

	s.CustomersWithRecs = len(customers)
	s.UniqueCategories = len(counts)
	s.AvgConfidence = confSum / float64(len(recs))
	s.HighConfidenceShare = float64(s.HighConfidenceCount) / float64(len(recs))

	best := -1
	for cat, n := range counts {
		if n > best || (n == best && cat < s.TopRecommendedCategory) {
			best = n
			s.TopRecommendedCategory = cat
		}
	}
	return s
}

// TopPerCustomer keeps each customer's k most confident recommendations,
// ordered by Customer_ID then confidence descending.
func TopPerCustomer(recs []models.Recommendation, k int) []models.Recommendation {
	sorted := append([]models.Recommendation(nil), recs...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].CustomerID != sorted[b].CustomerID {
			return sorted[a].CustomerID < sorted[b].CustomerID
		}
		return sorted[a].Confidence > sorted[b].Confidence
	})

	out := make([]models.Recommendation, 0, len(sorted))
	seen := 0
	for i, r := range sorted {
		if i == 0 || r.CustomerID != sorted[i-1].CustomerID {
			seen = 0
		}
		if seen < k {
			out = append(out, r)
		}
		seen++
	}
	return out
}
