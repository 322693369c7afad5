package charts

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/analytics"
	"salesreport/internal/config"
	apperrors "salesreport/internal/errors"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature), "%s is not a PNG", path)
}

func newTestRenderer() *Renderer {
	return NewRenderer(config.Default().Reports, nil)
}

func TestMonthlyTrend(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.MonthlyTrendChartFile)
	points := []analytics.MonthlyPoint{
		{Year: 2023, MonthNum: 12, Month: "December", Total: 140},
		{Year: 2024, MonthNum: 1, Month: "January", Total: 250},
		{Year: 2024, MonthNum: 2, Month: "February", Total: 100},
	}

	require.NoError(t, newTestRenderer().MonthlyTrend(points, path))
	assertPNG(t, path)
}

func TestMonthlyTrendEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, newTestRenderer().MonthlyTrend(nil, path))
	assertPNG(t, path)
}

func TestHorizontalBar(t *testing.T) {
	tests := []struct {
		name   string
		totals []analytics.Total
		size   Size
	}{
		{
			name:   "states",
			totals: []analytics.Total{{Key: "New York", Value: 300}, {Key: "California", Value: 100}, {Key: "Texas", Value: 40}},
		},
		{
			name:   "negative profit",
			totals: []analytics.Total{{Key: "Office", Value: 12}, {Key: "Furniture", Value: -30}},
		},
		{
			name:   "supervisor size",
			totals: []analytics.Total{{Key: "Alice", Value: 300}},
			size:   SupervisorSize,
		},
		{
			name: "no rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bar.png")
			err := newTestRenderer().HorizontalBar(BarChart{
				Title:  "Top States by Total Sales",
				XLabel: "Total_Sales",
				YLabel: "State",
				Totals: tt.totals,
				Size:   tt.size,
			}, path)
			require.NoError(t, err)
			assertPNG(t, path)
		})
	}
}

func TestHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.CorrelationHeatmapFile)
	m := analytics.CorrelationMatrix{
		Columns: []string{"Cost", "Sales", "Quantity"},
		Values: [][]float64{
			{1, 0.5, math.NaN()},
			{0.5, 1, -0.25},
			{math.NaN(), -0.25, 1},
		},
	}

	require.NoError(t, newTestRenderer().Heatmap(m, path))
	assertPNG(t, path)
}

func TestHeatmapEmpty(t *testing.T) {
	err := newTestRenderer().Heatmap(analytics.CorrelationMatrix{}, filepath.Join(t.TempDir(), "x.png"))
	assert.Equal(t, apperrors.ErrTypeReport, apperrors.TypeOf(err))
}

func TestCorrelationGridOrientation(t *testing.T) {
	g := correlationGrid{m: analytics.CorrelationMatrix{
		Columns: []string{"a", "b"},
		Values:  [][]float64{{1, 0.3}, {0.7, 1}},
	}}

	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	// Top grid row is the first matrix row
	assert.Equal(t, 0.3, g.Z(1, 1))
	assert.Equal(t, 0.7, g.Z(0, 0))
}

func TestSaveUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "chart.png")
	err := newTestRenderer().MonthlyTrend(nil, path)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}

func TestFormatCoefficient(t *testing.T) {
	assert.Equal(t, "0.50", formatCoefficient(0.5))
	assert.Equal(t, "-1.00", formatCoefficient(-1))
	assert.Equal(t, "nan", formatCoefficient(math.NaN()))
}
