package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/config"
	"salesreport/internal/dataprocessing"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
	"salesreport/internal/loader"
	"salesreport/internal/shared/testutil"
)

type fixture struct {
	pipeline *Pipeline
	paths    *config.Paths
	source   loader.Source
	logs     *testutil.BufferedSlogHandler
}

func newFixture(t *testing.T, workbook string, mutate func(*config.Config)) *fixture {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)

	cfg := config.Default()
	cfg.Input.Workbook = workbook
	if mutate != nil {
		mutate(cfg)
	}

	paths, err := config.NewPaths(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)

	p, err := New(cfg, paths, WithLogger(logger))
	require.NoError(t, err)

	src, err := loader.NewSource(context.Background(), cfg.Input, logger)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	return &fixture{pipeline: p, paths: paths, source: src, logs: logs}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun(t *testing.T) {
	for _, parallelism := range []int{1, 4} {
		t.Run(fmt.Sprintf("parallelism %d", parallelism), func(t *testing.T) {
			fx := newFixture(t, testutil.SalesWorkbook(t, nil), func(c *config.Config) {
				c.Reports.Parallelism = parallelism
			})

			result, err := fx.pipeline.Run(context.Background(), fx.source)
			require.NoError(t, err)
			assert.NotEmpty(t, result.RunID)

			for _, path := range []string{
				fx.paths.MonthlyTrendChart,
				fx.paths.StateSalesChart,
				fx.paths.CategorySalesChart,
				fx.paths.SupervisorChart,
				fx.paths.TopBrandsChart,
				fx.paths.ProfitByCategoryChart,
				fx.paths.CorrelationHeatmap,
				fx.paths.SalesByStateCSV,
				fx.paths.SalesByCategoryCSV,
				fx.paths.SupervisorSummaryCSV,
				fx.paths.CleanedDataCSV,
			} {
				assert.FileExists(t, path)
				assert.Contains(t, result.Files(), path)
			}

			for _, name := range dataprocessing.ReportOrder {
				assert.Equal(t, StatusCompleted, result.Reports[name], name)
			}
			testutil.AssertNoErrors(t, fx.logs)
		})
	}
}

func TestRunOutputs(t *testing.T) {
	fx := newFixture(t, testutil.SalesWorkbook(t, nil), nil)

	result, err := fx.pipeline.Run(context.Background(), fx.source)
	require.NoError(t, err)

	// SO1 duplicate and the dateless SO4 are gone; SO6 keeps a null date
	assert.Equal(t, 7, result.Clean.RowsIn)
	assert.Equal(t, 1, result.Clean.DroppedMissingKey)
	assert.Equal(t, 1, result.Clean.DroppedDuplicate)
	assert.Equal(t, 1, result.Enrich.Unmatched)

	// California and New York tie; key order breaks the tie
	assert.Equal(t, [][]string{
		{"State", "Total_Sales"},
		{"California", "200"},
		{"New York", "200"},
		{"Texas", "100"},
	}, readCSV(t, fx.paths.SalesByStateCSV))

	assert.Equal(t, [][]string{
		{"Assigned Supervisor", "total_sales", "orders", "profit"},
		{"Alice", "300", "2", "130"},
		{"Bob", "240", "2", "100"},
		{"Carol", "0", "1", "0"},
	}, readCSV(t, fx.paths.SupervisorSummaryCSV))

	cleaned := readCSV(t, fx.paths.CleanedDataCSV)
	require.Len(t, cleaned, 6)
	header := cleaned[0]
	assert.Contains(t, header, "State")
	assert.Contains(t, header, "Profit")
	assert.Contains(t, header, "Weekday")

	orders := make([]string, 0, 5)
	for _, row := range cleaned[1:] {
		orders = append(orders, row[0])
	}
	assert.Equal(t, []string{"SO1", "SO2", "SO3", "SO5", "SO6"}, orders)
}

func TestRunWithoutSupervisorColumn(t *testing.T) {
	sales := testutil.DropColumn(testutil.SalesRows(), "Assigned Supervisor")
	fx := newFixture(t, testutil.SalesWorkbook(t, sales), nil)

	result, err := fx.pipeline.Run(context.Background(), fx.source)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSupervisorColumnUnresolved))

	// Every other report ran before the failure
	for _, path := range []string{
		fx.paths.MonthlyTrendChart,
		fx.paths.StateSalesChart,
		fx.paths.CategorySalesChart,
		fx.paths.TopBrandsChart,
		fx.paths.ProfitByCategoryChart,
		fx.paths.CorrelationHeatmap,
		fx.paths.SalesByStateCSV,
		fx.paths.SalesByCategoryCSV,
	} {
		assert.FileExists(t, path)
	}
	assert.NoFileExists(t, fx.paths.SupervisorChart)
	assert.NoFileExists(t, fx.paths.SupervisorSummaryCSV)
	assert.NoFileExists(t, fx.paths.CleanedDataCSV)

	assert.Equal(t, StatusSkipped, result.Reports[dataprocessing.ReportSupervisor])
	stage, ok := result.Stage(StageSupervisor)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, stage.Status)
	_, ok = result.Stage(StageExport)
	assert.False(t, ok)

	testutil.AssertDiagnostic(t, fx.logs, dataprocessing.ReportSupervisor,
		"supervisor_performance skipped: "+dataprocessing.SupervisorMappingHint)
	testutil.AssertLogContains(t, fx.logs, slog.LevelError, "Pipeline failed")
}

func TestRunWithoutStateCodes(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Sales_Data.xlsx",
		testutil.Sheet{Name: "Sales_Data", Rows: testutil.SalesRows()},
		testutil.Sheet{Name: "State_list", Rows: [][]interface{}{{"Code", "State"}, {"NY", "New York"}}},
		testutil.Sheet{Name: "Supervisor", Rows: testutil.SupervisorRows()},
	)
	fx := newFixture(t, path, nil)

	result, err := fx.pipeline.Run(context.Background(), fx.source)
	require.NoError(t, err)

	assert.True(t, result.Enrich.JoinSkipped)
	assert.Equal(t, StatusSkipped, result.Reports[dataprocessing.ReportStateSales])
	assert.NoFileExists(t, fx.paths.StateSalesChart)
	assert.NoFileExists(t, fx.paths.SalesByStateCSV)
	assert.FileExists(t, fx.paths.SalesByCategoryCSV)
	assert.FileExists(t, fx.paths.CleanedDataCSV)

	testutil.AssertDiagnostic(t, fx.logs, config.SalesByStateCSVFile,
		"sales_by_state.csv skipped: missing column(s): State")
}

func TestRunMissingSheet(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Sales_Data.xlsx",
		testutil.Sheet{Name: "Sales_Data", Rows: testutil.SalesRows()},
		testutil.Sheet{Name: "State_list", Rows: testutil.StateRows()},
	)
	fx := newFixture(t, path, nil)

	result, err := fx.pipeline.Run(context.Background(), fx.source)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSheetNotFound))
	assert.Equal(t, apperrors.ErrTypeInput, apperrors.TypeOf(err))

	stage, ok := result.Stage(StageLoad)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, stage.Status)
	assert.Empty(t, result.Files())
}

func TestRunUnwritableOutput(t *testing.T) {
	fx := newFixture(t, testutil.SalesWorkbook(t, nil), nil)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	paths, err := config.NewPaths(filepath.Join(blocker, "outputs"))
	require.NoError(t, err)
	p, err := New(config.Default(), paths)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), fx.source)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}

func TestRunRecordsMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.Default().Telemetry, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default()
	cfg.Input.Workbook = testutil.SalesWorkbook(t, nil)
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)

	src, err := loader.NewSource(context.Background(), cfg.Input, logger)
	require.NoError(t, err)
	defer src.Close()

	p, err := New(cfg, paths, WithLogger(logger), WithTelemetry(providers))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), src)
	require.NoError(t, err)

	require.NoError(t, providers.WriteMetricsTextfile(paths.MetricsFile))
	content, err := os.ReadFile(paths.MetricsFile)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "rows_loaded_total")
	assert.Contains(t, text, `reason="duplicate"`)
	assert.Contains(t, text, "unmatched_region_codes_total")
	assert.Contains(t, text, `report="correlation_heatmap"`)
	assert.Contains(t, text, `stage="export"`)
}

func TestRunKeepsCallerRunID(t *testing.T) {
	fx := newFixture(t, testutil.SalesWorkbook(t, nil), nil)
	ctx := infrastructure.WithRunID(context.Background(), "run-42")

	result, err := fx.pipeline.Run(ctx, fx.source)
	require.NoError(t, err)
	assert.Equal(t, "run-42", result.RunID)
}
