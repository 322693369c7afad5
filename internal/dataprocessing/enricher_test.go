package dataprocessing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	"salesreport/internal/shared/testutil"
)

func cleaned(t *testing.T, header []string, rows ...[]string) *dataframe.Frame {
	t.Helper()
	out, _, err := NewCleaner(nil).Clean(context.Background(), dataframe.FromRecords(header, rows))
	require.NoError(t, err)
	return out
}

var stateLookup = dataframe.FromRecords([]string{"State_Code", "State"}, [][]string{
	{"NY", "New York"},
	{"CA", "California"},
})

func TestEnrichUnmatchedCodesKeepRows(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date"},
		[]string{"SO1", "NY", "45306"},
		[]string{"SO2", "ZZ", "45306"},
		[]string{"SO3", "CA", "45306"},
	)

	out, stats, err := NewEnricher(logger).Enrich(context.Background(), sales, stateLookup)
	require.NoError(t, err)

	assert.Equal(t, sales.Len(), out.Len())
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 1, stats.Unmatched)

	state := out.Column(config.ColState)
	require.NotNil(t, state)
	v, _ := state.Text(0)
	assert.Equal(t, "New York", v)
	assert.True(t, state.IsNull(1))
	code, _ := out.Column(config.ColStateCode).Text(1)
	assert.Equal(t, "ZZ", code)
}

func TestEnrichSkipsJoinWithoutLookupKey(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date"}, []string{"SO1", "NY", "45306"})
	badLookup := dataframe.FromRecords([]string{"Code", "State"}, [][]string{{"NY", "New York"}})

	out, stats, err := NewEnricher(logger).Enrich(context.Background(), sales, badLookup)
	require.NoError(t, err)

	assert.True(t, stats.JoinSkipped)
	assert.False(t, out.Has(config.ColState))
	testutil.AssertDiagnostic(t, handler, StepStateJoin, "State_Code column missing")
}

func TestEnrichSuffixesStateColumnPresentInBothSheets(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date", "State", "Sales", "Quantity"},
		[]string{"SO1", "NY", "45306", "NY state", "10", "2"},
	)

	out, stats, err := NewEnricher(logger).Enrich(context.Background(), sales, stateLookup)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Matched)

	assert.False(t, out.Has("State"))
	v, _ := out.Column("State_x").Text(0)
	assert.Equal(t, "NY state", v)
	v, _ = out.Column("State_y").Text(0)
	assert.Equal(t, "New York", v)
	testutil.AssertDiagnostic(t, logs, StepStateJoin, "suffixed _x/_y")

	// Without a bare State column the state report cannot run
	plan := BuildPlan(out, nil)
	assert.False(t, plan.Enabled(ReportStateSales))
}

func TestEnrichComputesTotals(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date", "Cost", "Sales", "Quantity"},
		[]string{"SO1", "NY", "45306", "0.1", "0.7", "3"},
		[]string{"SO2", "NY", "45306", "2", "n/a", "4"},
		[]string{"SO3", "NY", "45306", "1.5", "19.99", "7"},
	)

	out, stats, err := NewEnricher(logger).Enrich(context.Background(), sales, stateLookup)
	require.NoError(t, err)
	assert.True(t, stats.ComputedTotalSales)
	assert.True(t, stats.ComputedTotalCost)
	assert.True(t, stats.ProfitComputed)

	unit := out.Column(config.ColSales)
	qty := out.Column(config.ColQuantity)
	cost := out.Column(config.ColCost)
	totalSales := out.Column(config.ColTotalSales)
	totalCost := out.Column(config.ColTotalCost)
	profit := out.Column(config.ColProfit)

	for i := 0; i < out.Len(); i++ {
		s, okS := unit.Float(i)
		q, okQ := qty.Float(i)
		ts, okTS := totalSales.Float(i)
		if okS && okQ {
			require.True(t, okTS)
			assert.Equal(t, s*q, ts, "row %d", i)
		} else {
			assert.False(t, okTS, "null input gives null total on row %d", i)
		}

		c, _ := cost.Float(i)
		tc, okTC := totalCost.Float(i)
		require.True(t, okTC)
		assert.Equal(t, c*q, tc)

		p, okP := profit.Float(i)
		if okTS {
			require.True(t, okP)
			assert.Equal(t, ts-tc, p)
		} else {
			assert.False(t, okP)
		}
	}

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Computed Total_Sales = Sales * Quantity")
}

func TestEnrichNeverOverwritesTotals(t *testing.T) {
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date", "Sales", "Quantity", "Total_Sales"},
		[]string{"SO1", "NY", "45306", "10", "2", "999"},
	)

	out, stats, err := NewEnricher(nil).Enrich(context.Background(), sales, stateLookup)
	require.NoError(t, err)

	assert.False(t, stats.ComputedTotalSales)
	v, _ := out.Column(config.ColTotalSales).Float(0)
	assert.Equal(t, 999.0, v)
}

func TestEnrichMissingInputsAreDiagnostics(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date", "Sales"},
		[]string{"SO1", "NY", "45306", "10"},
	)

	out, stats, err := NewEnricher(logger).Enrich(context.Background(), sales, stateLookup)
	require.NoError(t, err)

	assert.False(t, out.Has(config.ColTotalSales))
	assert.False(t, out.Has(config.ColTotalCost))
	assert.False(t, out.Has(config.ColProfit))
	assert.False(t, stats.ProfitComputed)

	testutil.AssertDiagnostic(t, handler, StepTotalSales, "Total_Sales missing and cannot compute")
	testutil.AssertDiagnostic(t, handler, StepTotalCost, "Total_Cost missing and cannot compute")
	testutil.AssertDiagnostic(t, handler, StepProfit, "Cannot compute Profit")
}

func TestAddCalendar(t *testing.T) {
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date"},
		[]string{"SO1", "NY", "2024-01-15"},
		[]string{"SO2", "NY", "garbage"},
		[]string{"SO3", "NY", "2023-12-31"},
	)

	out, err := AddCalendar(sales)
	require.NoError(t, err)

	expectedTail := []string{"Year", "Month", "Month_Num", "Day", "Weekday"}
	names := out.Names()
	assert.Equal(t, expectedTail, names[len(names)-5:])

	year, _ := out.Column(config.ColYear).Float(0)
	month, _ := out.Column(config.ColMonth).Text(0)
	monthNum, _ := out.Column(config.ColMonthNum).Float(0)
	day, _ := out.Column(config.ColDay).Float(0)
	weekday, _ := out.Column(config.ColWeekday).Text(0)
	assert.Equal(t, 2024.0, year)
	assert.Equal(t, "January", month)
	assert.Equal(t, 1.0, monthNum)
	assert.Equal(t, 15.0, day)
	assert.Equal(t, "Monday", weekday)

	for _, col := range expectedTail {
		assert.True(t, out.Column(col).IsNull(1), "%s null for null date", col)
	}

	weekday, _ = out.Column(config.ColWeekday).Text(2)
	assert.Equal(t, "Sunday", weekday)
}

func TestEnrichFixtureColumnOrder(t *testing.T) {
	sales := cleaned(t, []string{"Order_Number", "State_Code", "Order_Date", "Cost", "Sales", "Quantity"},
		[]string{"SO1", "NY", "45306", "1", "2", "3"},
	)

	out, _, err := NewEnricher(nil).Enrich(context.Background(), sales, stateLookup)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Order_Number", "State_Code", "Order_Date", "Cost", "Sales", "Quantity",
		"State", "Total_Sales", "Total_Cost",
		"Year", "Month", "Month_Num", "Day", "Weekday", "Profit",
	}, out.Names())
}
