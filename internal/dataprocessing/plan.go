package dataprocessing

import (
	"context"
	"log/slog"
	"strings"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	"salesreport/internal/infrastructure"
)

// Report names. Each is also the diagnostic step logged when it is skipped.
const (
	ReportMonthlyTrend     = "monthly_sales_trend"
	ReportStateSales       = "state_sales_top20"
	ReportCategorySales    = "category_sales"
	ReportSupervisor       = "supervisor_performance"
	ReportTopBrands        = "top_brands"
	ReportProfitByCategory = "profit_by_category"
	ReportCorrelation      = "correlation_heatmap"
)

// ReportOrder is the order reports run in
var ReportOrder = []string{
	ReportMonthlyTrend,
	ReportStateSales,
	ReportCategorySales,
	ReportSupervisor,
	ReportTopBrands,
	ReportProfitByCategory,
	ReportCorrelation,
}

// Supervisor lookup hints logged when the sales sheet has no supervisor
// column. The lookup sheet is never joined.
const (
	SupervisorMappingHint = "No supervisor column found in sales. You have supervisor sheet - consider mapping."
	SupervisorMissingHint = "Supervisor info not available"
)

// PlannedReport records whether a report can run against the enriched table
type PlannedReport struct {
	Name    string
	Enabled bool
	// Reason explains a disabled report
	Reason string
}

// Plan is the capability check done once after enrichment
type Plan struct {
	Reports []PlannedReport
	// SupervisorColumn is the first supervisor candidate present, or ""
	SupervisorColumn string
	// NumericColumns are the numeric columns present, in canonical order
	NumericColumns []string
	// SupervisorHint is logged when SupervisorColumn is unresolved
	SupervisorHint string
}

// Enabled reports whether the named report can run
func (p *Plan) Enabled(name string) bool {
	for _, r := range p.Reports {
		if r.Name == name {
			return r.Enabled
		}
	}
	return false
}

// Reason returns why the named report is disabled, or ""
func (p *Plan) Reason(name string) string {
	for _, r := range p.Reports {
		if r.Name == name {
			return r.Reason
		}
	}
	return ""
}

// EnabledReports lists the runnable reports in order
func (p *Plan) EnabledReports() []string {
	var out []string
	for _, r := range p.Reports {
		if r.Enabled {
			out = append(out, r.Name)
		}
	}
	return out
}

// ResolveSupervisorColumn returns the first supervisor candidate column
// present in f
func ResolveSupervisorColumn(f *dataframe.Frame) (string, bool) {
	for _, c := range config.SupervisorCandidates {
		if f.Has(c) {
			return c, true
		}
	}
	return "", false
}

// BuildPlan decides which reports can run on the enriched sales table.
// supervisors is the supervisor lookup sheet, consulted only to choose the
// hint logged when no supervisor column resolves.
func BuildPlan(sales, supervisors *dataframe.Frame) *Plan {
	plan := &Plan{NumericColumns: sales.Present(config.NumericColumns...)}
	plan.SupervisorColumn, _ = ResolveSupervisorColumn(sales)

	if plan.SupervisorColumn == "" {
		if supervisors != nil && supervisors.Has(config.ColSupervisorLookup) {
			plan.SupervisorHint = SupervisorMappingHint
		} else {
			plan.SupervisorHint = SupervisorMissingHint
		}
	}

	need := func(name string, cols ...string) PlannedReport {
		var missing []string
		for _, c := range cols {
			if !sales.Has(c) {
				missing = append(missing, c)
			}
		}
		if len(missing) == 0 {
			return PlannedReport{Name: name, Enabled: true}
		}
		return PlannedReport{Name: name, Reason: "missing column(s): " + strings.Join(missing, ", ")}
	}

	plan.Reports = append(plan.Reports,
		need(ReportMonthlyTrend, config.ColTotalSales, config.ColOrderDate, config.ColYear, config.ColMonthNum),
		need(ReportStateSales, config.ColState, config.ColTotalSales),
		need(ReportCategorySales, config.ColCategory, config.ColTotalSales),
	)

	sup := need(ReportSupervisor, config.ColTotalSales)
	if plan.SupervisorColumn == "" {
		sup = PlannedReport{Name: ReportSupervisor, Reason: plan.SupervisorHint}
	}
	plan.Reports = append(plan.Reports,
		sup,
		need(ReportTopBrands, config.ColBrand, config.ColTotalSales),
		need(ReportProfitByCategory, config.ColProfit, config.ColCategory),
	)

	corr := PlannedReport{Name: ReportCorrelation, Enabled: len(plan.NumericColumns) >= 2}
	if !corr.Enabled {
		corr.Reason = "Not enough numeric columns for correlation"
	}
	plan.Reports = append(plan.Reports, corr)

	return plan
}

// Log records the plan: one info line plus a diagnostic per disabled report
func (p *Plan) Log(ctx context.Context, logger *slog.Logger) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.InfoContext(ctx, "Report plan built",
		slog.Any("enabled", p.EnabledReports()),
		slog.String("supervisor_column", p.SupervisorColumn),
		slog.Any("numeric_columns", p.NumericColumns))

	for _, r := range p.Reports {
		if r.Enabled {
			continue
		}
		infrastructure.Diagnostic(ctx, logger, r.Name, r.Name+" skipped: "+r.Reason)
	}
}
