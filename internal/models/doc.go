// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package models defines the typed schema shared by every pipeline stage.

Each stage consumes the previous stage's table and appends columns to the
same rows. Struct tags carry the original column names (csv and json) and the
row invariants (validate), so the same definition drives parsing, output and
stage-boundary validation.

Key Components:

  - Transaction, Customer, Snapshot: the input tables
  - CustomerScore: the scored row, grown stage by stage
  - Recommendation, AssociationRule, CrossSell: recommendation outputs
  - GroupSummary, ModelSummary, ImpactSummary: report tables
  - Table: a column-typed, sink-agnostic view used by every writer

Label Constants:

Segment names, risk levels, CLV categories, timing statuses and priorities are
declared as constants here so rule tables and tests reference one spelling.
*/
package models
