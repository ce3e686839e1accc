// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// Loss selects the boosting objective.
type Loss int

const (
	// LossLogistic is binomial deviance; Predict returns a probability.
	LossLogistic Loss = iota
	// LossSquared is least squares; Predict returns the regression value.
	LossSquared
)

func (l Loss) String() string {
	switch l {
	case LossLogistic:
		return "log_loss"
	case LossSquared:
		return "squared_error"
	default:
		return fmt.Sprintf("loss(%d)", int(l))
	}
}

// BoostConfig holds gradient boosting hyper-parameters.
type BoostConfig struct {
	// Trees is the number of boosting stages.
	Trees int

	// LearningRate shrinks each tree's contribution.
	LearningRate float64

	// MaxDepth bounds the depth of every regression tree.
	MaxDepth int

	// Subsample is the fraction of rows drawn without replacement per stage.
	// 1.0 disables row subsampling.
	Subsample float64

	// MinSamplesSplit is the smallest node that may be split.
	MinSamplesSplit int

	// MinSamplesLeaf is the smallest allowed child.
	MinSamplesLeaf int

	// Seed for reproducible subsampling.
	Seed int64
}

// DefaultBoostConfig returns the reference hyper-parameters.
func DefaultBoostConfig() BoostConfig {
	return BoostConfig{
		Trees:           100,
		LearningRate:    0.1,
		MaxDepth:        5,
		Subsample:       0.8,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            42,
	}
}

// minGain is the smallest split improvement considered real.
const minGain = 1e-12

// Node is one regression tree node. Internal nodes send x[Feature] <=
// Threshold to Left.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Leaf      bool
}

// Tree is a regression tree stored as a flat node slice rooted at index 0.
type Tree struct {
	Nodes []Node
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Ensemble is a fitted gradient boosted model. All fields are exported so
// the model can be persisted with encoding/gob.
type Ensemble struct {
	Loss         Loss
	Init         float64
	LearningRate float64
	Trees        []Tree
	Features     []string

	// Gain is the total split gain attributed to each feature.
	Gain []float64
}

// Raw returns the additive model output before the link function.
func (e *Ensemble) Raw(x []float64) float64 {
	f := e.Init
	for i := range e.Trees {
		f += e.LearningRate * e.Trees[i].predict(x)
	}
	return f
}

// Predict returns the probability of the positive class for logistic models
// and the regression estimate for squared-error models.
func (e *Ensemble) Predict(x []float64) float64 {
	f := e.Raw(x)
	if e.Loss == LossLogistic {
		return sigmoid(f)
	}
	return f
}

// PredictAll applies Predict to every row.
func (e *Ensemble) PredictAll(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = e.Predict(x[i])
	}
	return out
}

// Importances returns each feature's share of total split gain, highest
// first, ties broken by feature name.
func (e *Ensemble) Importances() []models.FeatureImportance {
	var total float64
	for _, g := range e.Gain {
		total += g
	}
	out := make([]models.FeatureImportance, len(e.Features))
	for i, name := range e.Features {
		imp := 0.0
		if total > 0 {
			imp = e.Gain[i] / total
		}
		out[i] = models.FeatureImportance{Feature: name, Importance: imp}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

func sigmoid(f float64) float64 {
	return 1 / (1 + math.Exp(-f))
}

// Fit trains an ensemble on x (rows by features) and y. For LossLogistic, y
// must contain only 0 and 1 and both classes must be present.
func Fit(ctx context.Context, x [][]float64, y []float64, features []string, loss Loss, cfg BoostConfig) (*Ensemble, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrInsufficientData, n, len(y))
	}
	for i := range x {
		if len(x[i]) != len(features) {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(x[i]), len(features))
		}
	}
	if cfg.Trees < 1 || cfg.MaxDepth < 1 || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("invalid boosting config: %+v", cfg)
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.Subsample <= 0 || cfg.Subsample > 1 {
		cfg.Subsample = 1
	}

	init, err := initialEstimate(y, loss)
	if err != nil {
		return nil, err
	}

	e := &Ensemble{
		Loss:         loss,
		Init:         init,
		LearningRate: cfg.LearningRate,
		Trees:        make([]Tree, 0, cfg.Trees),
		Features:     append([]string(nil), features...),
		Gain:         make([]float64, len(features)),
	}

	b := &treeBuilder{
		x:     x,
		order: presort(x, len(features)),
		r:     make([]float64, n),
		h:     make([]float64, n),
		cfg:   cfg,
		gain:  e.Gain,
	}

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = init
	}

	sampleSize := int(cfg.Subsample * float64(n))
	if sampleSize < 1 {
		sampleSize = 1
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible subsampling, not security
	nodeOf := make([]int, n)

	for t := 0; t < cfg.Trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b.gradients(y, raw, loss)

		if sampleSize < n {
			for i := range nodeOf {
				nodeOf[i] = -1
			}
			for _, i := range rng.Perm(n)[:sampleSize] {
				nodeOf[i] = 0
			}
		} else {
			for i := range nodeOf {
				nodeOf[i] = 0
			}
		}

		tree := b.grow(nodeOf, loss)
		for i := range raw {
			raw[i] += cfg.LearningRate * tree.predict(x[i])
		}
		e.Trees = append(e.Trees, tree)
	}

	return e, nil
}

func initialEstimate(y []float64, loss Loss) (float64, error) {
	mean := stats.Mean(y)
	if loss == LossSquared {
		return mean, nil
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return 0, fmt.Errorf("target %d is %v, want 0 or 1", i, v)
		}
	}
	if mean == 0 || mean == 1 {
		return 0, stats.ErrSingleClass
	}
	return math.Log(mean / (1 - mean)), nil
}

// presort returns, per feature, the row indices ordered by feature value.
func presort(x [][]float64, features int) [][]int {
	order := make([][]int, features)
	for f := range order {
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return x[idx[a]][f] < x[idx[b]][f]
		})
		order[f] = idx
	}
	return order
}

type treeBuilder struct {
	x     [][]float64
	order [][]int
	r     []float64 // negative gradient
	h     []float64 // hessian
	cfg   BoostConfig
	gain  []float64
}

func (b *treeBuilder) gradients(y, raw []float64, loss Loss) {
	for i := range y {
		if loss == LossLogistic {
			p := sigmoid(raw[i])
			b.r[i] = y[i] - p
			b.h[i] = p * (1 - p)
		} else {
			b.r[i] = y[i] - raw[i]
			b.h[i] = 1
		}
	}
}

type nodeStats struct {
	count int
	sumR  float64
	sumH  float64
}

func (s *nodeStats) add(r, h float64) {
	s.count++
	s.sumR += r
	s.sumH += h
}

type splitScan struct {
	count int
	sum   float64
	last  float64
}

type splitCandidate struct {
	found     bool
	gain      float64
	feature   int
	threshold float64
}

// grow builds one tree level by level. nodeOf maps each row to its current
// node, -1 for rows outside this stage's subsample. Every level needs one
// pass over the presorted rows per feature.
func (b *treeBuilder) grow(nodeOf []int, loss Loss) Tree {
	var root nodeStats
	for i, k := range nodeOf {
		if k == 0 {
			root.add(b.r[i], b.h[i])
		}
	}
	nodes := []Node{{}}
	st := []nodeStats{root}
	frontier := []int{0}

	for depth := 0; depth < b.cfg.MaxDepth && len(frontier) > 0; depth++ {
		slot := make([]int, len(nodes))
		for i := range slot {
			slot[i] = -1
		}
		var open []int
		for _, k := range frontier {
			if st[k].count >= b.cfg.MinSamplesSplit && st[k].count >= 2*b.cfg.MinSamplesLeaf {
				slot[k] = len(open)
				open = append(open, k)
			}
		}
		if len(open) == 0 {
			break
		}

		best := make([]splitCandidate, len(open))
		scan := make([]splitScan, len(open))
		for f := range b.order {
			clear(scan)
			for _, i := range b.order[f] {
				k := nodeOf[i]
				if k < 0 || slot[k] < 0 {
					continue
				}
				s := slot[k]
				v := b.x[i][f]
				sc := &scan[s]
				if sc.count > 0 && v > sc.last {
					b.consider(&best[s], &st[k], sc, f, v)
				}
				sc.count++
				sc.sum += b.r[i]
				sc.last = v
			}
		}

		var next []int
		for s, k := range open {
			c := best[s]
			if !c.found {
				continue
			}
			left := len(nodes)
			nodes = append(nodes, Node{}, Node{})
			st = append(st, nodeStats{}, nodeStats{})
			nodes[k].Feature = c.feature
			nodes[k].Threshold = c.threshold
			nodes[k].Left = left
			nodes[k].Right = left + 1
			b.gain[c.feature] += c.gain
			next = append(next, left, left+1)
		}

		for i, k := range nodeOf {
			if k < 0 || nodes[k].Left == 0 {
				continue
			}
			n := &nodes[k]
			child := n.Right
			if b.x[i][n.Feature] <= n.Threshold {
				child = n.Left
			}
			nodeOf[i] = child
			st[child].add(b.r[i], b.h[i])
		}
		frontier = next
	}

	// The root is never a child, so Left == 0 marks a leaf.
	for k := range nodes {
		if nodes[k].Left == 0 {
			nodes[k].Leaf = true
			nodes[k].Value = leafValue(st[k], loss)
		}
	}
	return Tree{Nodes: nodes}
}

// consider evaluates splitting parent between sc.last and v on feature f.
func (b *treeBuilder) consider(c *splitCandidate, parent *nodeStats, sc *splitScan, f int, v float64) {
	nl := sc.count
	nr := parent.count - nl
	if nl < b.cfg.MinSamplesLeaf || nr < b.cfg.MinSamplesLeaf {
		return
	}
	sr := parent.sumR - sc.sum
	gain := sc.sum*sc.sum/float64(nl) + sr*sr/float64(nr) - parent.sumR*parent.sumR/float64(parent.count)
	if gain <= minGain || (c.found && gain <= c.gain+minGain) {
		return
	}
	threshold := sc.last + (v-sc.last)/2
	if threshold >= v {
		threshold = sc.last
	}
	*c = splitCandidate{found: true, gain: gain, feature: f, threshold: threshold}
}

// leafValue is the mean residual for squared error and a single Newton step
// for the logistic loss.
func leafValue(s nodeStats, loss Loss) float64 {
	if s.count == 0 {
		return 0
	}
	if loss == LossSquared {
		return s.sumR / float64(s.count)
	}
	if s.sumH < 1e-150 {
		return 0
	}
	return s.sumR / s.sumH
}
