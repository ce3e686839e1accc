// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/recommend"
)

// JaccardConfig contains configuration for collaborative filtering.
type JaccardConfig struct {
	// K is the number of neighbours that vote.
	// Default: 20.
	K int
}

// DefaultJaccardConfig returns the reference configuration.
func DefaultJaccardConfig() JaccardConfig {
	return JaccardConfig{K: 20}
}

// neighbor is a similar customer and their similarity.
type neighbor struct {
	Row        int
	Similarity float64
}

// JaccardCF implements user-based collaborative filtering with weighted
// Jaccard similarity over category purchase counts.
//
// For a target customer u and a category c that u has not bought:
//
//	score(u, c) = sum over v in N(u) that bought c of sim(u, v)
//
// where N(u) is the K most similar customers, ties broken by row order.
// Pairs whose count vectors are both all zero have no defined similarity and
// are skipped.
type JaccardCF struct {
	BaseAlgorithm
	config JaccardConfig
	matrix *recommend.Matrix
}

// NewJaccardCF creates a collaborative filtering algorithm.
func NewJaccardCF(cfg JaccardConfig) *JaccardCF {
	if cfg.K <= 0 {
		cfg.K = 20
	}
	return &JaccardCF{
		BaseAlgorithm: NewBaseAlgorithm(models.MethodCollaborative),
		config:        cfg,
	}
}

// Train stores the purchase matrix. Similarities are computed per target
// customer at prediction time.
func (j *JaccardCF) Train(ctx context.Context, m *recommend.Matrix) error {
	j.acquireTrainLock()
	defer j.releaseTrainLock()

	if ContextCancelled(ctx) {
		return ctx.Err()
	}
	if m == nil || m.Rows() == 0 {
		return fmt.Errorf("collaborative: empty purchase matrix")
	}

	j.matrix = m
	j.markTrained()
	return nil
}

// Similarity returns the weighted Jaccard similarity sum(min)/sum(max) of
// two count vectors. ok is false when the union is zero.
func Similarity(a, b []float64) (sim float64, ok bool) {
	var inter, union float64
	for i := range a {
		x, y := a[i], b[i]
		if x < y {
			inter += x
			union += y
		} else {
			inter += y
			union += x
		}
	}
	if union == 0 {
		return 0, false
	}
	return inter / union, true
}

// neighbors returns the K most similar customers to row.
func (j *JaccardCF) neighbors(row int) []neighbor {
	target := j.matrix.Counts[row]
	out := make([]neighbor, 0, j.matrix.Rows())
	for other, counts := range j.matrix.Counts {
		if other == row {
			continue
		}
		if sim, ok := Similarity(target, counts); ok {
			out = append(out, neighbor{Row: other, Similarity: sim})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Similarity > out[b].Similarity
	})
	if len(out) > j.config.K {
		out = out[:j.config.K]
	}
	return out
}

// Predict returns up to k categories the customer's neighbours bought and
// the customer has not.
func (j *JaccardCF) Predict(ctx context.Context, row, k int) ([]recommend.Candidate, error) {
	j.acquirePredictLock()
	defer j.releasePredictLock()

	if !j.trained {
		return nil, nil
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	if row < 0 || row >= j.matrix.Rows() {
		return nil, fmt.Errorf("collaborative: row %d out of range", row)
	}

	acc := recommend.NewAccumulator()
	for _, n := range j.neighbors(row) {
		for c := range j.matrix.Categories {
			if j.matrix.Bought(n.Row, c) && !j.matrix.Bought(row, c) {
				acc.Add(c, n.Similarity)
			}
		}
	}
	return acc.Top(k), nil
}
