// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cultivar/internal/models"
)

// ErrNotTrained is returned when recommending before any algorithm trained.
var ErrNotTrained = errors.New("recommend: no trained algorithm")

// Engine blends the registered algorithms into per-customer recommendations.
// It is safe for concurrent use once trained.
type Engine struct {
	config *Config
	logger zerolog.Logger

	algorithms []Algorithm
	weights    map[string]float64
	algMu      sync.RWMutex

	trainMu sync.Mutex
	matrix  *Matrix
	status  TrainingStatus
}

// TrainingStatus describes the last Train call.
type TrainingStatus struct {
	LastTrainedAt time.Time         `json:"last_trained_at"`
	Duration      time.Duration     `json:"duration"`
	Trained       []string          `json:"trained"`
	Failed        map[string]string `json:"failed,omitempty"`
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// The engine owns its copy; later edits by the caller do not leak in.
	return &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		weights: cfg.Weights.ToMap(),
	}, nil
}

// RegisterAlgorithm adds an algorithm to the blend. Scores are combined in
// registration order, which fixes the order of methods in Reason.
func (e *Engine) RegisterAlgorithm(alg Algorithm) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	e.algorithms = append(e.algorithms, alg)
	e.logger.Info().
		Str("algorithm", alg.Name()).
		Float64("weight", e.weights[alg.Name()]).
		Msg("registered algorithm")
}

func (e *Engine) getAlgorithms() []Algorithm {
	e.algMu.RLock()
	defer e.algMu.RUnlock()
	return append([]Algorithm(nil), e.algorithms...)
}

// Train trains every registered algorithm on the purchase matrix.
// Individual algorithm failures are logged and recorded in the status; an
// error is returned only when no algorithm trained.
func (e *Engine) Train(ctx context.Context, m *Matrix) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	start := time.Now()
	status := TrainingStatus{Failed: make(map[string]string)}

	for _, alg := range e.getAlgorithms() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := alg.Train(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Error().
				Str("algorithm", alg.Name()).
				Err(err).
				Msg("algorithm training failed")
			status.Failed[alg.Name()] = err.Error()
			continue
		}
		status.Trained = append(status.Trained, alg.Name())
		e.logger.Debug().
			Str("algorithm", alg.Name()).
			Msg("algorithm training complete")
	}

	status.LastTrainedAt = time.Now()
	status.Duration = time.Since(start)
	e.matrix = m
	e.status = status

	if len(status.Trained) == 0 {
		return ErrNotTrained
	}

	e.logger.Info().
		Strs("trained", status.Trained).
		Int("customers", m.Rows()).
		Int("categories", len(m.Categories)).
		Dur("duration", status.Duration).
		Msg("recommendation models trained")
	return nil
}

// Status returns the last training status.
func (e *Engine) Status() TrainingStatus {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	return e.status
}

// blended is one category's combined score and contributing methods.
type blended struct {
	category int
	score    float64
	methods  []string
}

// Recommend returns the blended top-N recommendations for customer row.
func (e *Engine) Recommend(ctx context.Context, row int) ([]models.Recommendation, error) {
	m := e.matrix
	if m == nil {
		return nil, ErrNotTrained
	}

	index := make(map[int]int)
	var items []blended

	for _, alg := range e.getAlgorithms() {
		if !alg.IsTrained() {
			continue
		}
		weight, ok := e.weights[alg.Name()]
		if !ok || weight == 0 {
			continue
		}

		cands, err := alg.Predict(ctx, row, e.config.Limits.CandidatesPerMethod)
		if err != nil {
			return nil, fmt.Errorf("%s predict for %s: %w", alg.Name(), m.CustomerIDs[row], err)
		}

		for _, c := range cands {
			idx, seen := index[c.Category]
			if !seen {
				idx = len(items)
				index[c.Category] = idx
				items = append(items, blended{category: c.Category})
			}
			items[idx].score += weight * c.Score
			items[idx].methods = append(items[idx].methods, alg.Name())
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })
	if len(items) > e.config.Limits.TopN {
		items = items[:e.config.Limits.TopN]
	}

	recs := make([]models.Recommendation, len(items))
	for i, it := range items {
		recs[i] = models.Recommendation{
			CustomerID:          m.CustomerIDs[row],
			RecommendedCategory: m.Categories[it.category],
			Confidence:          math.Min(1, it.score/e.config.ConfidenceCap),
			Reason:              strings.Join(it.methods, ", "),
			Score:               it.score,
		}
	}
	return recs, nil
}

// RecommendAll recommends for every target row on a bounded worker pool.
// Output follows the order of rows, then rank within each customer.
// progress, when non-nil, is called after each customer completes.
func (e *Engine) RecommendAll(ctx context.Context, rows []int, progress func()) ([]models.Recommendation, error) {
	if e.matrix == nil {
		return nil, ErrNotTrained
	}

	slots := make([][]models.Recommendation, len(rows))
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.workers())

	for i, row := range rows {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			recs, err := e.Recommend(gCtx, row)
			if err != nil {
				return err
			}
			slots[i] = recs
			done.Add(1)
			if progress != nil {
				progress()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	out := make([]models.Recommendation, 0, total)
	for _, s := range slots {
		out = append(out, s...)
	}

	e.logger.Debug().
		Int64("customers", done.Load()).
		Int("recommendations", total).
		Msg("recommendations generated")
	return out, nil
}
