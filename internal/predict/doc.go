// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package predict implements stage 3: churn classification, CLV regression,
purchase timing and customer priority.

# Models

Both predictors are gradient boosted regression trees (Fit) sharing one
hyper-parameter set:

	trees 100, learning rate 0.1, max depth 5, row subsample 0.8, seed 42

The churn model uses binomial deviance and is evaluated on a stratified
80/20 split (accuracy, AUC). The CLV model uses squared error on customers
with Monetary > 0 and a random 80/20 split (R², MAE, RMSE). Its target is
historical Monetary, a proxy for lifetime value.

Trees are grown level by level over presorted feature columns. Feature
importance is the share of total split gain.

# Rule Tables

Risk levels, CLV categories, purchase timing and priority are ordered
[]Rule slices evaluated first match wins, so each bucket can be tested on
its own.

# Failure Semantics

A predictor that cannot train (too few rows, a single class) leaves its
columns nil and records the error on Result. Priority and the exports that
depend on it are skipped in that case.
*/
package predict
