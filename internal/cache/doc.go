// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package cache stores decoded input snapshots keyed by their content
fingerprint, so repeated runs over unchanged inputs skip parsing.

# Backends

  - Cache: in-memory map with TTL expiry and a background sweeper
  - BadgerCache: BadgerDB directory with native entry TTL, shared across
    CLI invocations
  - Nop: disables caching

All three implement Cacher and are selected by NewCacher from the
cache.backend configuration value.

# Keys and Values

Keys are SHA-256 fingerprints of the input files (see ingest.Fingerprint).
Values are opaque bytes; the loader stores JSON-encoded snapshots. Because
the key is a content hash, a changed input never hits a stale entry and no
explicit invalidation is needed.

# Thread Safety

Every backend is safe for concurrent use.
*/
package cache
