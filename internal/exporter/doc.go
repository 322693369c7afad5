// Package exporter writes the pipeline's CSV outputs.
//
// CSVWriter is the core writer. It writes plain UTF-8 with a header row and
// has a streaming mode for large tables. Relative file names resolve inside the configured
// output directory.
//
// On top of it sit the report writers:
//
//	w := exporter.NewCSVWriter(paths, logger)
//
//	// group totals, e.g. sales_by_state.csv
//	err := w.WriteTotals(config.SalesByStateCSVFile, "State", "Total_Sales", totals)
//
//	// supervisor summary with distinct order counts
//	err = w.WriteSupervisorSummary(config.SupervisorSummaryCSVFile, "Salesperson", summary)
//
//	// the full enriched table, streamed row by row
//	err = w.WriteCleanedData(enriched)
package exporter
