// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package segment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when there are fewer rows than clusters.
var ErrInsufficientData = errors.New("segment: insufficient data")

// KMeansConfig configures Lloyd's algorithm with k-means++ seeding.
type KMeansConfig struct {
	K             int
	Inits         int     // independent restarts; the lowest inertia wins
	MaxIterations int     // per restart
	Tolerance     float64 // relative to the mean feature variance
	Seed          int64
}

// KMeansResult is the best clustering found.
type KMeansResult struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64 // sum of squared distances to the assigned centroid
	Iterations int
}

// KMeans clusters rows (already standardized) into cfg.K groups.
// Results depend only on the input and cfg.Seed.
func KMeans(ctx context.Context, rows [][]float64, cfg KMeansConfig) (*KMeansResult, error) {
	if cfg.K < 1 {
		return nil, fmt.Errorf("kmeans: k must be positive, got %d", cfg.K)
	}
	if len(rows) < cfg.K {
		return nil, fmt.Errorf("kmeans: %d rows for k=%d: %w", len(rows), cfg.K, ErrInsufficientData)
	}
	inits := max(cfg.Inits, 1)
	maxIter := max(cfg.MaxIterations, 1)
	tol := cfg.Tolerance * meanVariance(rows)

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seeding, not security sensitive

	var best *KMeansResult
	for run := 0; run < inits; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		centroids := seedPlusPlus(rows, cfg.K, rng)
		res := lloyd(rows, centroids, maxIter, tol)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// seedPlusPlus picks initial centroids with probability proportional to the
// squared distance from the nearest centroid already chosen.
func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rows[rng.Intn(len(rows))]
	centroids = append(centroids, append([]float64(nil), first...))

	dist := make([]float64, len(rows))
	for i, r := range rows {
		dist[i] = sqDist(r, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(dist)
		var next int
		if total > 0 {
			next = sampleWeighted(dist, rng.Float64()*total)
		} else {
			// All remaining points coincide with a centroid.
			next = rng.Intn(len(rows))
		}
		c := append([]float64(nil), rows[next]...)
		centroids = append(centroids, c)
		for i, r := range rows {
			if d := sqDist(r, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// sampleWeighted returns the first index whose cumulative weight exceeds
// target, falling back to the last positive weight.
func sampleWeighted(weights []float64, target float64) int {
	acc, last := 0.0, 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if acc > target {
			return i
		}
	}
	return last
}

// lloyd iterates assignment and update steps until centroid movement falls
// below tol or maxIter is reached.
func lloyd(rows [][]float64, centroids [][]float64, maxIter int, tol float64) *KMeansResult {
	k := len(centroids)
	dim := len(rows[0])
	labels := make([]int, len(rows))
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	counts := make([]int, k)

	iter := 0
	for iter < maxIter {
		iter++
		for i, r := range rows {
			labels[i] = nearest(r, centroids)
		}

		for c := 0; c < k; c++ {
			floats.Scale(0, sums[c])
			counts[c] = 0
		}
		for i, r := range rows {
			floats.Add(sums[labels[i]], r)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(centroids[c], sums[c])
			copy(centroids[c], sums[c])
		}
		if shift <= tol {
			break
		}
	}

	inertia := 0.0
	for i, r := range rows {
		labels[i] = nearest(r, centroids)
		inertia += sqDist(r, centroids[labels[i]])
	}
	return &KMeansResult{Labels: labels, Centroids: centroids, Inertia: inertia, Iterations: iter}
}

// nearest returns the closest centroid, lowest index on ties.
func nearest(r []float64, centroids [][]float64) int {
	best, bestD := 0, math.Inf(1)
	for c, cen := range centroids {
		if d := sqDist(r, cen); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func meanVariance(rows [][]float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	dim := len(rows[0])
	col := make([]float64, len(rows))
	total := 0.0
	for j := 0; j < dim; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		total += stat.PopVariance(col, nil)
	}
	return total / float64(dim)
}
