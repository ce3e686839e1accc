// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/tomtom215/cultivar/internal/validation"
)

// Validate checks struct tags first, then the cross-field rules tags cannot
// express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateInput(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	return c.validateCache()
}

// validateInput rejects unsupported input file types early so the loader
// never has to guess.
func (c *Config) validateInput() error {
	for _, p := range []string{c.Input.TransactionsPath, c.Input.CustomersPath} {
		if p == "" {
			continue
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".csv", ".xlsx", ".duckdb", ".db":
		default:
			return fmt.Errorf("input %s: unsupported file type %q (want .csv, .xlsx, .duckdb)", p, filepath.Ext(p))
		}
	}
	return nil
}

// validateRecommend requires the blend weights to form a convex combination.
func (c *Config) validateRecommend() error {
	sum := c.Recommend.CollaborativeWeight + c.Recommend.AssociationWeight
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("recommend: collaborative_weight + association_weight must be 1, got %f", sum)
	}
	if c.Recommend.CandidatesPerMethod < c.Recommend.TopN {
		return fmt.Errorf("recommend: candidates_per_method (%d) must be >= top_n (%d)",
			c.Recommend.CandidatesPerMethod, c.Recommend.TopN)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Backend == "badger" && c.Cache.Dir == "" {
		return fmt.Errorf("cache: dir is required for the badger backend")
	}
	return nil
}
