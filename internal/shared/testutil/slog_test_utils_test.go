package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("keeps attrs added with With", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "loader").Info("sheet loaded")

		assert.True(t, handler.ContainsAttr("component", "loader"))
	})

	t.Run("selects diagnostics by step", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Warn("State_Code missing", slog.Bool("diagnostic", true), slog.String("step", "state_join"))
		logger.Warn("ordinary warning")
		logger.Warn("Not enough numeric columns", slog.Bool("diagnostic", true), slog.String("step", "correlation_heatmap"))

		assert.Len(t, handler.Diagnostics(""), 2)
		assert.Len(t, handler.Diagnostics("state_join"), 1)
		AssertDiagnostic(t, handler, "correlation_heatmap", "numeric columns")
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("msg1")
		logger.Info("msg2")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})
}

func TestSalesWorkbook(t *testing.T) {
	path := SalesWorkbook(t, nil)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sales_Data", "State_list", "Supervisor"}, f.GetSheetList())

	rows, err := f.GetRows("Sales_Data", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, len(SalesRows()))
	assert.Equal(t, "Order_Number", rows[0][0])
	assert.Equal(t, "SO1", rows[1][0])
}

func TestDropColumn(t *testing.T) {
	rows := DropColumn(SalesRows(), "Assigned Supervisor")

	assert.NotContains(t, rows[0], "Assigned Supervisor")
	assert.Len(t, rows[1], len(SalesHeader)-1)
	assert.Len(t, SalesRows()[0], len(SalesHeader), "source rows untouched")
}
