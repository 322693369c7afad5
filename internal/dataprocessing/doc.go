// Package dataprocessing turns the raw sales sheet into the enriched table
// the reports read.
//
// # Stages
//
//  1. Cleaner: drops rows missing Order_Number, State_Code or Order_Date,
//     drops repeated order numbers (first kept), parses Order_Date and
//     coerces the numeric columns. Bad values become nulls.
//  2. Enricher: left-joins the state lookup on State_Code, computes
//     Total_Sales and Total_Cost when absent, derives the calendar columns
//     and Profit.
//  3. Profiler: logs shape, null counts, describe() of numeric columns and
//     the most frequent categories, brands and states.
//  4. BuildPlan: checks column availability once and lists which reports
//     can run, with a reason for each one that cannot.
//
// # Usage
//
//	clean, _, err := dataprocessing.NewCleaner(logger).Clean(ctx, wb.Sales)
//	enriched, _, err := dataprocessing.NewEnricher(logger).Enrich(ctx, clean, wb.States)
//	plan := dataprocessing.BuildPlan(enriched, wb.Supervisors)
//	plan.Log(ctx, logger)
//
// # Error Handling
//
// Only a missing key column is an error (wrapping errors.ErrColumnNotFound).
// Every other missing input is logged as a diagnostic and the dependent
// derivation is skipped.
package dataprocessing
