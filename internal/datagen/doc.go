// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package datagen produces seeded synthetic snapshots for demos and tests.
//
// Customers are drawn from four behavioural personas (loyal, regular,
// lapsed, one-time) so every segment, both churn classes and a spread of
// purchase intervals appear in the output. Product names contain the
// keywords the category classifier matches, plus a few uncategorised
// services. A gofakeit generator seeded from Config.Seed drives every
// random choice.
package datagen
