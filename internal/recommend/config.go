// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package recommend

import (
	"fmt"
	"math"
	"runtime"

	"github.com/tomtom215/cultivar/internal/models"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines each method's contribution to the blended score.
	// Weights are used as given and must sum to 1.
	Weights AlgorithmWeights `json:"weights"`

	// Collaborative contains parameters for Jaccard collaborative filtering.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Association contains parameters for association rule mining.
	Association AssociationConfig `json:"association"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// ConfidenceCap is the blended score that maps to confidence 1.
	// Default: 5.0.
	ConfidenceCap float64 `json:"confidence_cap"`

	// CrossSell contains cross-sell selection parameters.
	CrossSell CrossSellConfig `json:"cross_sell"`
}

// AlgorithmWeights defines the relative contribution of each method.
type AlgorithmWeights struct {
	// Collaborative is the weight for collaborative filtering.
	// Default: 0.3.
	Collaborative float64 `json:"collaborative"`

	// Association is the weight for association rules.
	// Default: 0.7.
	Association float64 `json:"association"`
}

// ToMap returns the weights keyed by method name.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w AlgorithmWeights) ToMap() map[string]float64 {
	return map[string]float64{
		models.MethodCollaborative: w.Collaborative,
		models.MethodAssociation:   w.Association,
	}
}

// CollaborativeConfig contains parameters for collaborative filtering.
type CollaborativeConfig struct {
	// Neighbors is how many most-similar customers vote.
	// Default: 20.
	Neighbors int `json:"neighbors"`
}

// AssociationConfig contains parameters for association rule mining.
type AssociationConfig struct {
	// MinSupport is the minimum share of customers buying both categories.
	// Default: 0.01.
	MinSupport float64 `json:"min_support"`

	// MinConfidence is the minimum P(consequent | antecedent).
	// Default: 0.1.
	MinConfidence float64 `json:"min_confidence"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// TargetCustomers is how many customers, by Monetary, get recommendations.
	// 0 targets everyone. Default: 1000.
	TargetCustomers int `json:"target_customers"`

	// CandidatesPerMethod is how many candidates each method passes to the blend.
	// Default: 10.
	CandidatesPerMethod int `json:"candidates_per_method"`

	// TopN is how many blended recommendations each customer receives.
	// Default: 5.
	TopN int `json:"top_n"`

	// Workers bounds per-customer parallelism. 0 uses runtime.NumCPU().
	Workers int `json:"workers"`
}

// CrossSellConfig contains cross-sell selection parameters.
type CrossSellConfig struct {
	// MaxCategories: customers with fewer distinct categories qualify.
	// Default: 3.
	MaxCategories int `json:"max_categories"`

	// Uplift is the assumed share of Predicted_CLV a cross-sell adds.
	// Default: 0.2.
	Uplift float64 `json:"uplift"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: AlgorithmWeights{
			Collaborative: 0.3,
			Association:   0.7,
		},
		Collaborative: CollaborativeConfig{
			Neighbors: 20,
		},
		Association: AssociationConfig{
			MinSupport:    0.01,
			MinConfidence: 0.1,
		},
		Limits: LimitsConfig{
			TargetCustomers:     1000,
			CandidatesPerMethod: 10,
			TopN:                5,
		},
		ConfidenceCap: 5.0,
		CrossSell: CrossSellConfig{
			MaxCategories: 3,
			Uplift:        0.2,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Collaborative < 0 || c.Weights.Association < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", c.Weights)
	}
	if sum := c.Weights.Collaborative + c.Weights.Association; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %f", sum)
	}
	if c.Collaborative.Neighbors < 1 {
		return fmt.Errorf("collaborative.neighbors must be positive, got %d", c.Collaborative.Neighbors)
	}
	if c.Association.MinSupport < 0 || c.Association.MinSupport > 1 {
		return fmt.Errorf("association.min_support must be in [0, 1], got %f", c.Association.MinSupport)
	}
	if c.Association.MinConfidence < 0 || c.Association.MinConfidence > 1 {
		return fmt.Errorf("association.min_confidence must be in [0, 1], got %f", c.Association.MinConfidence)
	}
	if c.Limits.TargetCustomers < 0 {
		return fmt.Errorf("limits.target_customers must be non-negative, got %d", c.Limits.TargetCustomers)
	}
	if c.Limits.TopN < 1 {
		return fmt.Errorf("limits.top_n must be positive, got %d", c.Limits.TopN)
	}
	if c.Limits.CandidatesPerMethod < c.Limits.TopN {
		return fmt.Errorf("limits.candidates_per_method must be >= limits.top_n, got %d < %d",
			c.Limits.CandidatesPerMethod, c.Limits.TopN)
	}
	if c.Limits.Workers < 0 {
		return fmt.Errorf("limits.workers must be non-negative, got %d", c.Limits.Workers)
	}
	if c.ConfidenceCap <= 0 {
		return fmt.Errorf("confidence_cap must be positive, got %f", c.ConfidenceCap)
	}
	if c.CrossSell.MaxCategories < 1 {
		return fmt.Errorf("cross_sell.max_categories must be positive, got %d", c.CrossSell.MaxCategories)
	}
	if c.CrossSell.Uplift < 0 {
		return fmt.Errorf("cross_sell.uplift must be non-negative, got %f", c.CrossSell.Uplift)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// Nested structs hold only value types.
	cp := *c
	return &cp
}

// workers resolves the worker count.
func (c *Config) workers() int {
	if c.Limits.Workers > 0 {
		return c.Limits.Workers
	}
	return runtime.NumCPU()
}
