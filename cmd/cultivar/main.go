// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Command cultivar runs the customer intelligence and recommendation
// pipeline.
//
//	cultivar generate --out data
//	cultivar run -t data/transactions.csv -c data/customers.csv -o output
//	cultivar schedule -t sales.duckdb --interval 24h --metrics-addr :9464
package main

import (
	"os"

	"github.com/tomtom215/cultivar/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
