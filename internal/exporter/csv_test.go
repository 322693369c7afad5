package exporter

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/analytics"
	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
)

func setupTestEnv(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	return NewCSVWriter(paths, nil), paths
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

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		expected [][]string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"State", "Total_Sales"},
				Records: [][]string{{"New York", "300"}, {"Texas", "40"}},
			},
			expected: [][]string{{"State", "Total_Sales"}, {"New York", "300"}, {"Texas", "40"}},
		},
		{
			name:     "headers only",
			options:  WriteOptions{Headers: []string{"Category", "Total_Sales"}},
			expected: [][]string{{"Category", "Total_Sales"}},
		},
		{
			name: "special characters quoted",
			options: WriteOptions{
				Headers: []string{"Brand", "Note"},
				Records: [][]string{{"Acme, Inc.", "say \"hi\"\nthere"}},
			},
			expected: [][]string{{"Brand", "Note"}, {"Acme, Inc.", "say \"hi\"\nthere"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, paths := setupTestEnv(t)
			require.NoError(t, w.WriteCSV("out.csv", tt.options))
			assert.Equal(t, tt.expected, readCSV(t, filepath.Join(paths.OutputDir, "out.csv")))
		})
	}
}

func TestCSVWriter_NoByteOrderMark(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *CSVWriter) error
	}{
		{
			name: "records",
			write: func(w *CSVWriter) error {
				return w.WriteCSV("plain.csv", WriteOptions{Headers: []string{"État"}, Records: [][]string{{"Île"}}})
			},
		},
		{
			name: "stream",
			write: func(w *CSVWriter) error {
				stream, err := w.CreateStreamWriter("plain.csv", []string{"État"})
				if err != nil {
					return err
				}
				if err := stream.WriteRecord([]string{"Île"}); err != nil {
					return err
				}
				return stream.Close()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, paths := setupTestEnv(t)
			require.NoError(t, tt.write(w))

			data, err := os.ReadFile(filepath.Join(paths.OutputDir, "plain.csv"))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), "État\n"), "got %q", data)
		})
	}
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	w, paths := setupTestEnv(t)
	abs := filepath.Join(t.TempDir(), "x.csv")

	assert.Equal(t, filepath.Join(paths.OutputDir, "x.csv"), w.resolvePath("x.csv"))
	assert.Equal(t, abs, w.resolvePath(abs))
}

func TestCSVWriter_ReplacesExistingFile(t *testing.T) {
	w, paths := setupTestEnv(t)
	require.NoError(t, w.WriteCSV("r.csv", WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}, {"2"}}}))
	require.NoError(t, w.WriteCSV("r.csv", WriteOptions{Headers: []string{"a"}, Records: [][]string{{"3"}}}))

	assert.Equal(t, [][]string{{"a"}, {"3"}}, readCSV(t, filepath.Join(paths.OutputDir, "r.csv")))
}

func TestStreamWriter_Rows(t *testing.T) {
	w, _ := setupTestEnv(t)
	stream, err := w.CreateStreamWriter("s.csv", []string{"a", "b"})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, stream.WriteRecord([]string{"x", "y"}))
	}
	assert.Equal(t, 100, stream.Rows())
	require.NoError(t, stream.Close())
}

func TestWriteTotals(t *testing.T) {
	w, paths := setupTestEnv(t)
	totals := []analytics.Total{{Key: "New York", Value: 300.5}, {Key: "Texas", Value: 40}}

	require.NoError(t, w.WriteTotals(config.SalesByStateCSVFile, "State", "Total_Sales", totals))

	assert.Equal(t, [][]string{
		{"State", "Total_Sales"},
		{"New York", "300.5"},
		{"Texas", "40"},
	}, readCSV(t, paths.SalesByStateCSV))
}

func TestWriteSupervisorSummary(t *testing.T) {
	tests := []struct {
		name     string
		summary  []analytics.SupervisorSummary
		expected [][]string
	}{
		{
			name: "with profit",
			summary: []analytics.SupervisorSummary{
				{Supervisor: "Alice", TotalSales: 300, Orders: 2, Profit: 120, HasProfit: true},
				{Supervisor: "Bob", TotalSales: 40, Orders: 1, Profit: -5, HasProfit: true},
			},
			expected: [][]string{
				{"Assigned Supervisor", "total_sales", "orders", "profit"},
				{"Alice", "300", "2", "120"},
				{"Bob", "40", "1", "-5"},
			},
		},
		{
			name: "without profit",
			summary: []analytics.SupervisorSummary{
				{Supervisor: "Alice", TotalSales: 300, Orders: 2},
			},
			expected: [][]string{
				{"Assigned Supervisor", "total_sales", "orders"},
				{"Alice", "300", "2"},
			},
		},
		{
			name:     "empty",
			expected: [][]string{{"Assigned Supervisor", "total_sales", "orders"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, paths := setupTestEnv(t)
			require.NoError(t, w.WriteSupervisorSummary(config.SupervisorSummaryCSVFile, "Assigned Supervisor", tt.summary))
			assert.Equal(t, tt.expected, readCSV(t, paths.SupervisorSummaryCSV))
		})
	}
}

func TestWriteCleanedData(t *testing.T) {
	w, paths := setupTestEnv(t)
	f, err := dataframe.New(
		dataframe.NewStringSeries("Order_Number", []string{"SO1", "SO2"}, nil),
		dataframe.NewTimeSeries("Order_Date", []time.Time{
			time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			{},
		}, []bool{true, false}),
		dataframe.NewFloatSeries("Sales", []float64{12.5, math.NaN()}, []bool{true, false}),
	)
	require.NoError(t, err)

	require.NoError(t, w.WriteCleanedData(f))

	assert.Equal(t, [][]string{
		{"Order_Number", "Order_Date", "Sales"},
		{"SO1", "2024-01-15", "12.5"},
		{"SO2", "", ""},
	}, readCSV(t, paths.CleanedDataCSV))
}

func TestWriteErrorsAreStorageErrors(t *testing.T) {
	w, _ := setupTestEnv(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// A regular file in place of a directory makes every create fail
	err := w.WriteTotals(filepath.Join(blocker, "t.csv"), "k", "v", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))

	f, _ := dataframe.New(dataframe.NewStringSeries("a", []string{"1"}, nil))
	err = w.WriteFrame(filepath.Join(blocker, "f.csv"), f)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}
