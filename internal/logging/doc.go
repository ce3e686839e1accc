// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package logging provides centralized zerolog-based structured logging for Cultivar.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from the application config
//   - JSON output for scheduled runs, console output for interactive use
//   - Run IDs carried through context.Context and attached by Ctx
//   - StageLogger helpers for the start/complete/fail/skip events of each
//     pipeline stage
//   - An slog.Handler adapter so suture's sutureslog hook logs through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "console"})
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	logging.Ctx(ctx).Info().Int("customers", n).Msg("Snapshot loaded")
//
//	stage := logging.NewStageLogger(ctx, "segmentation")
//	stage.Started(len(rows))
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
