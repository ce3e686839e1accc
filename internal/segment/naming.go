// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package segment

import (
	"fmt"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// Cluster names.
const (
	ClusterLoyalHighValue  = "Loyal High-Value"
	ClusterDormantVeterans = "Dormant Veterans"
	ClusterLostLowValue    = "Lost Low-Value"
	ClusterMidTier         = "Mid-Tier Customers"
	ClusterRecentEngagers  = "Recent Engagers"
)

// ClusterProfile is a cluster's mean Recency, Frequency and Monetary.
type ClusterProfile struct {
	Recency   float64
	Frequency float64
	Monetary  float64
}

// MonetaryQuartiles holds the corpus-wide Monetary thresholds used for naming.
type MonetaryQuartiles struct {
	Q25, Q50, Q75 float64
}

// ClusterRule names a cluster from its profile.
type ClusterRule struct {
	Label string
	Match func(p ClusterProfile, q MonetaryQuartiles) bool
}

// ClusterRules is evaluated in order; unmatched clusters are named Cluster_N.
var ClusterRules = []ClusterRule{
	{ClusterLoyalHighValue, func(p ClusterProfile, q MonetaryQuartiles) bool {
		return p.Monetary > q.Q75 && p.Frequency > 10 && p.Recency < 180
	}},
	{ClusterDormantVeterans, func(p ClusterProfile, q MonetaryQuartiles) bool {
		return p.Monetary > q.Q50 && p.Recency > 365
	}},
	{ClusterLostLowValue, func(p ClusterProfile, q MonetaryQuartiles) bool {
		return p.Monetary < q.Q25 && p.Recency > 365
	}},
	{ClusterMidTier, func(p ClusterProfile, _ MonetaryQuartiles) bool {
		return p.Recency > 180 && p.Frequency < 10
	}},
	{ClusterRecentEngagers, func(p ClusterProfile, _ MonetaryQuartiles) bool {
		return p.Recency < 90
	}},
}

// NameCluster applies ClusterRules to one cluster.
func NameCluster(id int, p ClusterProfile, q MonetaryQuartiles) string {
	for _, rule := range ClusterRules {
		if rule.Match(p, q) {
			return rule.Label
		}
	}
	return fmt.Sprintf("Cluster_%d", id)
}

// NameClusters names every cluster id in [0,k) from the rows' assignments.
// Names may repeat across clusters.
func NameClusters(rows []models.CustomerScore, labels []int, k int) []string {
	monetary := make([]float64, len(rows))
	for i := range rows {
		monetary[i] = rows[i].Monetary
	}
	qs := stats.Quantiles(monetary, 0.25, 0.5, 0.75)
	quartiles := MonetaryQuartiles{Q25: qs[0], Q50: qs[1], Q75: qs[2]}

	sums := make([]ClusterProfile, k)
	counts := make([]int, k)
	for i := range rows {
		c := labels[i]
		sums[c].Recency += float64(rows[i].Recency)
		sums[c].Frequency += float64(rows[i].Frequency)
		sums[c].Monetary += rows[i].Monetary
		counts[c]++
	}

	names := make([]string, k)
	for c := 0; c < k; c++ {
		p := sums[c]
		if n := float64(counts[c]); n > 0 {
			p = ClusterProfile{Recency: p.Recency / n, Frequency: p.Frequency / n, Monetary: p.Monetary / n}
		}
		names[c] = NameCluster(c, p, quartiles)
	}
	return names
}
