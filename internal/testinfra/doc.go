// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package testinfra provides container helpers for integration tests.
//
// It uses testcontainers-go to start throwaway services. Every file is
// guarded by the integration build tag, so the default test run never
// needs Docker:
//
//	func TestSink_Integration(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//	    // connect with pg.URL
//	}
//
// Run with:
//
//	go test -tags integration ./...
package testinfra
