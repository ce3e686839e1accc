// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package modelstore persists trained predictors between runs.
//
// Models are serialized with encoding/gob, compressed with gzip and written
// as {name}_v{version}.gob.gz. Each file carries Metadata including a
// SHA-256 checksum of the uncompressed payload, verified on Load.
//
// Versions increase per model name. Prune keeps the newest N versions,
// which the pipeline calls after every save.
//
// # Thread Safety
//
// Store is safe for concurrent use within one process. Writes go through a
// temporary file and rename, so a reader never sees a partial model.
package modelstore
