// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

/*
Package features implements stage 1 of the pipeline: turning a raw snapshot
into one feature row per customer.

# Processing Steps

 1. Deduplicate transactions by order identifier (first occurrence wins).
 2. Classify product text into the ordered category taxonomy.
 3. Aggregate per customer: first/last purchase, revenue, order count and
    category counts.
 4. Join onto the base customer table (the population), deriving the base
    table from transactions when none is supplied.
 5. Derive Recency and Customer_Age_Days relative to the latest transaction
    in the snapshot, never wall-clock time, and bucket Frequency, Monetary
    and Recency.

Revenue sums use shopspring/decimal so the per-customer totals do not depend
on transaction order.
*/
package features
