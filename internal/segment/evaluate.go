// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package segment

import (
	"context"
	"math"
	"math/rand"
	"slices"

	"github.com/tomtom215/cultivar/internal/models"
)

// Evaluate runs K-Means for every k in [minK, maxK] and reports inertia and
// silhouette. It informs the report only; the configured k is always used.
func Evaluate(ctx context.Context, rows [][]float64, cfg KMeansConfig, minK, maxK, sampleSize int) ([]models.KEvaluation, error) {
	sample := sampleIndices(len(rows), sampleSize, cfg.Seed)

	var out []models.KEvaluation
	for k := minK; k <= maxK && k < len(rows); k++ {
		kc := cfg
		kc.K = k
		res, err := KMeans(ctx, rows, kc)
		if err != nil {
			return out, err
		}
		out = append(out, models.KEvaluation{
			K:          k,
			Inertia:    res.Inertia,
			Silhouette: Silhouette(rows, res.Labels, sample),
		})
	}
	return out, nil
}

// sampleIndices returns a deterministic, sorted sample of row indices.
// A size of 0 or at least n selects every row.
func sampleIndices(n, size int, seed int64) []int {
	if size <= 0 || size >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic sampling
	idx := rng.Perm(n)[:size]
	slices.Sort(idx)
	return idx
}

// Silhouette returns the mean silhouette coefficient over the sampled rows,
// with distances computed within the sample. Returns 0 when fewer than two
// clusters are present in the sample.
func Silhouette(rows [][]float64, labels []int, sample []int) float64 {
	clusters := make(map[int]struct{})
	for _, i := range sample {
		clusters[labels[i]] = struct{}{}
	}
	if len(clusters) < 2 {
		return 0
	}

	total := 0.0
	for _, i := range sample {
		sums := make(map[int]float64)
		counts := make(map[int]int)
		for _, j := range sample {
			if i == j {
				continue
			}
			sums[labels[j]] += math.Sqrt(sqDist(rows[i], rows[j]))
			counts[labels[j]]++
		}

		own := labels[i]
		if counts[own] == 0 {
			continue // singleton cluster scores 0
		}
		a := sums[own] / float64(counts[own])
		b := math.Inf(1)
		for c, n := range counts {
			if c == own || n == 0 {
				continue
			}
			b = math.Min(b, sums[c]/float64(n))
		}
		if math.IsInf(b, 1) {
			continue
		}
		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(len(sample))
}
