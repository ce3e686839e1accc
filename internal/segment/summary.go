// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package segment

import (
	"cmp"
	"slices"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// Summarize groups rows by key and aggregates each group, sorted by Monetary
// sum descending (ties by group name). Rows with an empty key are skipped.
func Summarize(rows []models.CustomerScore, key func(*models.CustomerScore) string) []models.GroupSummary {
	type acc struct {
		monetary, frequency, recency, aov, rate, age []float64
	}
	groups := make(map[string]*acc)
	for i := range rows {
		row := &rows[i]
		k := key(row)
		if k == "" {
			continue
		}
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
		}
		g.monetary = append(g.monetary, row.Monetary)
		g.frequency = append(g.frequency, float64(row.Frequency))
		g.recency = append(g.recency, float64(row.Recency))
		g.aov = append(g.aov, row.AvgOrderValue)
		g.rate = append(g.rate, row.PurchaseRate)
		g.age = append(g.age, float64(row.CustomerAgeDays))
	}

	out := make([]models.GroupSummary, 0, len(groups))
	for name, g := range groups {
		sum := 0.0
		for _, m := range g.monetary {
			sum += m
		}
		out = append(out, models.GroupSummary{
			Group:               name,
			Count:               len(g.monetary),
			MonetarySum:         stats.Round2(sum),
			MonetaryMean:        stats.Round2(stats.Mean(g.monetary)),
			MonetaryStd:         stats.Round2(stats.SampleStd(g.monetary)),
			FrequencyMean:       stats.Round2(stats.Mean(g.frequency)),
			RecencyMean:         stats.Round2(stats.Mean(g.recency)),
			AvgOrderValueMean:   stats.Round2(stats.Mean(g.aov)),
			PurchaseRateMean:    stats.Round2(stats.Mean(g.rate)),
			CustomerAgeDaysMean: stats.Round2(stats.Mean(g.age)),
		})
	}

	slices.SortFunc(out, func(a, b models.GroupSummary) int {
		if c := cmp.Compare(b.MonetarySum, a.MonetarySum); c != 0 {
			return c
		}
		return cmp.Compare(a.Group, b.Group)
	})
	return out
}
