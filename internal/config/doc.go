// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package config provides layered configuration for Cultivar using Koanf v2.

# Configuration Sources

Sources are applied in order, later sources overriding earlier ones:

 1. Struct defaults (defaultConfig), which reproduce the reference pipeline's
    constants: seed 42, five clusters, 90-day churn rule, 30/70 blend, etc.
 2. YAML file: --config flag, CULTIVAR_CONFIG, or the first of
    DefaultConfigPaths that exists.
 3. Environment: CULTIVAR_<SECTION>__<KEY>, for example
    CULTIVAR_RECOMMEND__TARGET_CUSTOMERS=500.

# Example YAML

	seed: 42
	input:
	  transactions_path: data/transactions.csv
	  customers_path: data/customers.xlsx
	output:
	  dir: out
	  duckdb_path: out/cultivar.duckdb
	recommend:
	  target_customers: 1000
	  cross_sell_uplift: 0.2
	cache:
	  backend: badger
	  dir: /var/cache/cultivar

# Validation

Load validates struct tags with go-playground/validator and then applies
cross-field checks (blend weights summing to one, supported input types,
cache directory for the badger backend).
*/
package config
