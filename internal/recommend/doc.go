// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package recommend implements the hybrid category recommendation engine.
//
// # Architecture
//
// The engine works on the customer x category purchase-count matrix built
// from the scored customer table and blends two algorithm families from the
// algorithms subpackage:
//
//   - Collaborative: weighted Jaccard user-user filtering
//   - Association: pairwise market basket rules scored by confidence x lift
//
// Each algorithm passes its best CandidatesPerMethod categories to the
// blend, which sums weight x score per category, keeps the TopN and maps
// the blended score to a confidence with min(1, score / ConfidenceCap). The
// Reason field lists the contributing methods in registration order.
//
// # Determinism
//
// Candidate ties rank in first-seen order, all sorts are stable and the
// worker pool writes into position-indexed slots, so the same matrix
// always yields the same recommendation table.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, logger)
//	engine.RegisterAlgorithm(algorithms.NewJaccardCF(algorithms.JaccardConfig{K: 20}))
//	engine.RegisterAlgorithm(algorithms.NewAssociationRules(algorithms.DefaultAssociationConfig()))
//
//	m := recommend.NewMatrix(table)
//	if err := engine.Train(ctx, m); err != nil { ... }
//	recs, err := engine.RecommendAll(ctx, recommend.TargetCustomers(table, 1000), nil)
//
// # Thread Safety
//
// Training acquires an exclusive lock while prediction uses a shared lock,
// so a trained engine serves concurrent Recommend calls.
package recommend
