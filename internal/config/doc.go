// Package config loads runtime configuration for the sales report pipeline.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. A YAML or TOML configuration file
//	3. A .env file in the working directory
//	4. Environment variables prefixed with SALESREPORT_
//
// # Environment Variables
//
//	SALESREPORT_INPUT_WORKBOOK=Sales_Data.xlsx
//	SALESREPORT_INPUT_SOURCE=excel
//	SALESREPORT_OUTPUT_DIR=outputs
//	SALESREPORT_REPORTS_PARALLELISM=1
//	SALESREPORT_LOGGING_LEVEL=info
//	SALESREPORT_TELEMETRY_TRACE_EXPORTER=none
//
// With no file and no environment the defaults reproduce the fixed layout the
// pipeline was designed around: one workbook with the Sales_Data, State_list
// and Supervisor sheets, and every output written under outputs/.
//
// # Path Management
//
// Paths resolves the output directory once and exposes the well-known output
// file locations, so no other package builds file names by hand.
package config
