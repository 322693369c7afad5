package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"salesreport/internal/analytics"
	"salesreport/internal/charts"
	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	"salesreport/internal/dataprocessing"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
)

// chartReport renders one report chart and returns the file it wrote
type chartReport func(f *dataframe.Frame, plan *dataprocessing.Plan) (string, error)

func (p *Pipeline) chartReports() map[string]chartReport {
	return map[string]chartReport{
		dataprocessing.ReportMonthlyTrend:     p.monthlyTrend,
		dataprocessing.ReportStateSales:       p.stateSales,
		dataprocessing.ReportCategorySales:    p.categorySales,
		dataprocessing.ReportSupervisor:       p.supervisorPerformance,
		dataprocessing.ReportTopBrands:        p.topBrands,
		dataprocessing.ReportProfitByCategory: p.profitByCategory,
		dataprocessing.ReportCorrelation:      p.correlationHeatmap,
	}
}

// runReports renders every enabled chart. Reports only read the enriched
// table, so with parallelism above one they run on a bounded errgroup.
func (p *Pipeline) runReports(ctx context.Context, f *dataframe.Frame, result *Result) error {
	reports := p.chartReports()

	parallelism := p.cfg.Reports.Parallelism
	if parallelism <= 1 {
		for _, name := range dataprocessing.ReportOrder {
			if err := p.runReport(ctx, name, reports[name], f, result); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, name := range dataprocessing.ReportOrder {
		g.Go(func() error {
			return p.runReport(gctx, name, reports[name], f, result)
		})
	}
	return g.Wait()
}

func (p *Pipeline) runReport(ctx context.Context, name string, render chartReport, f *dataframe.Frame, result *Result) error {
	if !result.Plan.Enabled(name) {
		result.setReport(name, StatusSkipped)
		p.metrics.RecordReport(ctx, name, infrastructure.ReportSkipped)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := p.tracer.traceReport(ctx, name)
	defer span.End()

	path, err := render(f, result.Plan)
	if err != nil {
		result.setReport(name, StatusFailed)
		p.metrics.RecordReport(ctx, name, infrastructure.ReportFailed)
		infrastructure.RecordError(ctx, err)
		return err
	}

	result.setReport(name, StatusCompleted)
	p.metrics.RecordReport(ctx, name, infrastructure.ReportWritten)
	p.fileWritten(ctx, result, path, "png")
	p.logger.InfoContext(ctx, "Report written",
		slog.String("report", name),
		slog.String("path", path))
	return nil
}

func (p *Pipeline) monthlyTrend(f *dataframe.Frame, _ *dataprocessing.Plan) (string, error) {
	points, err := analytics.MonthlyTrend(f)
	if err != nil {
		return "", err
	}
	return p.paths.MonthlyTrendChart, p.renderer.MonthlyTrend(points, p.paths.MonthlyTrendChart)
}

func (p *Pipeline) stateSales(f *dataframe.Frame, _ *dataprocessing.Plan) (string, error) {
	totals, err := analytics.SalesByState(f)
	if err != nil {
		return "", err
	}
	return p.paths.StateSalesChart, p.renderer.HorizontalBar(charts.BarChart{
		Title:  "Top 20 States by Total Sales",
		XLabel: config.ColTotalSales,
		YLabel: config.ColState,
		Totals: analytics.TopN(totals, p.cfg.Reports.TopStates),
	}, p.paths.StateSalesChart)
}

func (p *Pipeline) categorySales(f *dataframe.Frame, _ *dataprocessing.Plan) (string, error) {
	totals, err := analytics.SalesByCategory(f)
	if err != nil {
		return "", err
	}
	return p.paths.CategorySalesChart, p.renderer.HorizontalBar(charts.BarChart{
		Title:  "Sales by Category",
		XLabel: config.ColTotalSales,
		YLabel: config.ColCategory,
		Totals: totals,
	}, p.paths.CategorySalesChart)
}

func (p *Pipeline) supervisorPerformance(f *dataframe.Frame, plan *dataprocessing.Plan) (string, error) {
	totals, err := analytics.SalesBySupervisor(f, plan.SupervisorColumn)
	if err != nil {
		return "", err
	}
	return p.paths.SupervisorChart, p.renderer.HorizontalBar(charts.BarChart{
		Title:  "Top Supervisors by Sales",
		XLabel: config.ColTotalSales,
		YLabel: plan.SupervisorColumn,
		Totals: analytics.TopN(totals, p.cfg.Reports.TopSupervisors),
		Size:   charts.SupervisorSize,
	}, p.paths.SupervisorChart)
}

func (p *Pipeline) topBrands(f *dataframe.Frame, _ *dataprocessing.Plan) (string, error) {
	totals, err := analytics.SalesByBrand(f)
	if err != nil {
		return "", err
	}
	return p.paths.TopBrandsChart, p.renderer.HorizontalBar(charts.BarChart{
		Title:  "Top 10 Brands by Sales",
		XLabel: config.ColTotalSales,
		YLabel: config.ColBrand,
		Totals: analytics.TopN(totals, p.cfg.Reports.TopBrands),
	}, p.paths.TopBrandsChart)
}

func (p *Pipeline) profitByCategory(f *dataframe.Frame, _ *dataprocessing.Plan) (string, error) {
	totals, err := analytics.ProfitByCategory(f)
	if err != nil {
		return "", err
	}
	return p.paths.ProfitByCategoryChart, p.renderer.HorizontalBar(charts.BarChart{
		Title:  "Profit by Category",
		XLabel: config.ColProfit,
		YLabel: config.ColCategory,
		Totals: totals,
	}, p.paths.ProfitByCategoryChart)
}

func (p *Pipeline) correlationHeatmap(f *dataframe.Frame, plan *dataprocessing.Plan) (string, error) {
	m, err := analytics.Correlate(f, plan.NumericColumns)
	if err != nil {
		return "", err
	}
	return p.paths.CorrelationHeatmap, p.renderer.Heatmap(m, p.paths.CorrelationHeatmap)
}

// writeSummaries writes the state and category totals tables. Each is
// written only when its grouping column is present.
func (p *Pipeline) writeSummaries(ctx context.Context, f *dataframe.Frame, result *Result) error {
	tables := []struct {
		report string
		key    string
		file   string
		path   string
		totals func(*dataframe.Frame) ([]analytics.Total, error)
	}{
		{dataprocessing.ReportStateSales, config.ColState, config.SalesByStateCSVFile, p.paths.SalesByStateCSV, analytics.SalesByState},
		{dataprocessing.ReportCategorySales, config.ColCategory, config.SalesByCategoryCSVFile, p.paths.SalesByCategoryCSV, analytics.SalesByCategory},
	}

	for _, t := range tables {
		if !result.Plan.Enabled(t.report) {
			infrastructure.Diagnostic(ctx, p.logger, t.file, t.file+" skipped: "+result.Plan.Reason(t.report))
			continue
		}
		totals, err := t.totals(f)
		if err != nil {
			return err
		}
		if err := p.writer.WriteTotals(t.file, t.key, config.ColTotalSales, totals); err != nil {
			return err
		}
		p.fileWritten(ctx, result, t.path, "csv")
	}
	return nil
}

// writeSupervisorSummary always runs. Without a resolved supervisor column
// it fails the run with ErrSupervisorColumnUnresolved.
func (p *Pipeline) writeSupervisorSummary(ctx context.Context, f *dataframe.Frame, result *Result) error {
	column := result.Plan.SupervisorColumn
	summary, err := analytics.SummarizeSupervisors(f, column)
	if err != nil {
		if errors.Is(err, apperrors.ErrSupervisorColumnUnresolved) {
			p.logger.ErrorContext(ctx, "Supervisor summary has no grouping column",
				slog.Any("candidates", config.SupervisorCandidates))
		}
		return err
	}
	if err := p.writer.WriteSupervisorSummary(config.SupervisorSummaryCSVFile, column, summary); err != nil {
		return err
	}
	p.fileWritten(ctx, result, p.paths.SupervisorSummaryCSV, "csv")
	return nil
}
