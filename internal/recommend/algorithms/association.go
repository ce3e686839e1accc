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

// AssociationConfig contains configuration for association rule mining.
type AssociationConfig struct {
	// MinSupport is the minimum share of customers buying both categories.
	MinSupport float64

	// MinConfidence is the minimum P(consequent | antecedent).
	MinConfidence float64
}

// DefaultAssociationConfig returns the reference configuration.
func DefaultAssociationConfig() AssociationConfig {
	return AssociationConfig{MinSupport: 0.01, MinConfidence: 0.1}
}

// rule is an association rule over matrix column indices.
type rule struct {
	antecedent int
	consequent int
	support    float64
	confidence float64
	lift       float64
}

// AssociationRules recommends categories through pairwise market basket
// rules mined from the binary customer x category matrix.
//
// For every unordered pair {A, B} with support(A and B) >= MinSupport it
// emits A -> B and B -> A:
//
//	confidence(A -> B) = support(A and B) / support(A)
//	lift(A, B)         = support(A and B) / (support(A) * support(B))
//
// keeping rules with confidence >= MinConfidence. A customer's candidate
// score is the best confidence * lift over rules whose antecedent they
// bought and whose consequent they have not.
type AssociationRules struct {
	BaseAlgorithm
	config AssociationConfig
	matrix *recommend.Matrix

	// Rules sorted by lift descending, then antecedent and consequent name.
	rules []rule

	// byAntecedent indexes rules per antecedent column, preserving lift order.
	byAntecedent [][]int
}

// NewAssociationRules creates an association rule algorithm.
func NewAssociationRules(cfg AssociationConfig) *AssociationRules {
	return &AssociationRules{
		BaseAlgorithm: NewBaseAlgorithm(models.MethodAssociation),
		config:        cfg,
	}
}

// Train mines the rule set.
func (a *AssociationRules) Train(ctx context.Context, m *recommend.Matrix) error {
	a.acquireTrainLock()
	defer a.releaseTrainLock()

	if m == nil || m.Rows() == 0 {
		return fmt.Errorf("association: empty purchase matrix")
	}

	nc := len(m.Categories)
	single := make([]int, nc)
	pairs := make([]int, nc*nc)
	bought := make([]int, 0, nc)

	for row := range m.Counts {
		if row%1024 == 0 && ContextCancelled(ctx) {
			return ctx.Err()
		}
		bought = bought[:0]
		for c := 0; c < nc; c++ {
			if m.Bought(row, c) {
				bought = append(bought, c)
				single[c]++
			}
		}
		for x := 0; x < len(bought); x++ {
			for y := x + 1; y < len(bought); y++ {
				pairs[bought[x]*nc+bought[y]]++
			}
		}
	}

	n := float64(m.Rows())
	var rules []rule
	for i := 0; i < nc; i++ {
		si := float64(single[i]) / n
		if si < a.config.MinSupport || single[i] == 0 {
			continue
		}
		for j := i + 1; j < nc; j++ {
			sj := float64(single[j]) / n
			if sj < a.config.MinSupport || single[j] == 0 {
				continue
			}
			both := float64(pairs[i*nc+j]) / n
			if both == 0 || both < a.config.MinSupport {
				continue
			}
			lift := both / (si * sj)
			if conf := both / si; conf >= a.config.MinConfidence {
				rules = append(rules, rule{antecedent: i, consequent: j, support: both, confidence: conf, lift: lift})
			}
			if conf := both / sj; conf >= a.config.MinConfidence {
				rules = append(rules, rule{antecedent: j, consequent: i, support: both, confidence: conf, lift: lift})
			}
		}
	}

	names := m.Categories
	sort.SliceStable(rules, func(x, y int) bool {
		if rules[x].lift != rules[y].lift {
			return rules[x].lift > rules[y].lift
		}
		if names[rules[x].antecedent] != names[rules[y].antecedent] {
			return names[rules[x].antecedent] < names[rules[y].antecedent]
		}
		return names[rules[x].consequent] < names[rules[y].consequent]
	})

	byAntecedent := make([][]int, nc)
	for idx, r := range rules {
		byAntecedent[r.antecedent] = append(byAntecedent[r.antecedent], idx)
	}

	a.matrix = m
	a.rules = rules
	a.byAntecedent = byAntecedent
	a.markTrained()
	return nil
}

// Rules returns the mined rules, highest lift first.
func (a *AssociationRules) Rules() []models.AssociationRule {
	a.acquirePredictLock()
	defer a.releasePredictLock()

	out := make([]models.AssociationRule, len(a.rules))
	for i, r := range a.rules {
		out[i] = models.AssociationRule{
			Antecedent: a.matrix.Categories[r.antecedent],
			Consequent: a.matrix.Categories[r.consequent],
			Support:    r.support,
			Confidence: r.confidence,
			Lift:       r.lift,
		}
	}
	return out
}

// Predict returns up to k consequents for the customer, scored by the best
// confidence * lift among applicable rules.
func (a *AssociationRules) Predict(ctx context.Context, row, k int) ([]recommend.Candidate, error) {
	a.acquirePredictLock()
	defer a.releasePredictLock()

	if !a.trained {
		return nil, nil
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	if row < 0 || row >= a.matrix.Rows() {
		return nil, fmt.Errorf("association: row %d out of range", row)
	}

	acc := recommend.NewAccumulator()
	for c := range a.matrix.Categories {
		if !a.matrix.Bought(row, c) {
			continue
		}
		for _, idx := range a.byAntecedent[c] {
			r := a.rules[idx]
			if !a.matrix.Bought(row, r.consequent) {
				acc.Max(r.consequent, r.confidence*r.lift)
			}
		}
	}
	return acc.Top(k), nil
}
