// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package stats provides the numeric helpers shared by segmentation,
// prediction and reporting: linear-interpolation quantiles (Hyndman-Fan
// type 7), quantile binning, first-occurrence ranking, z-score
// standardization, and model quality metrics.
//
// Moments and ROC curves come from gonum; quantiles are computed here because
// gonum's LinInterp quantile is type 4 and the breakpoints must match type 7.
package stats
