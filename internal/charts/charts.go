// Package charts renders report tables as PNG images.
package charts

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"salesreport/internal/analytics"
	"salesreport/internal/config"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
)

// Size is a figure size in inches
type Size struct {
	Width  float64
	Height float64
}

// Fixed figure sizes that do not follow the configured default
var (
	SupervisorSize = Size{Width: 10, Height: 8}
	HeatmapSize    = Size{Width: 8, Height: 6}
)

// BarChart describes a horizontal bar chart, one bar per total
type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Totals []analytics.Total
	// Size overrides the renderer default when non-zero
	Size Size
}

// Renderer draws and saves charts
type Renderer struct {
	size   Size
	logger *slog.Logger
}

// NewRenderer creates a renderer with the configured default figure size
func NewRenderer(cfg config.ReportsConfig, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	size := Size{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	if size.Width <= 0 || size.Height <= 0 {
		size = Size{Width: config.DefaultChartWidth, Height: config.DefaultChartHeight}
	}
	return &Renderer{size: size, logger: logger}
}

// MonthlyTrend draws one line per year over a fixed Jan..Dec axis
func (r *Renderer) MonthlyTrend(points []analytics.MonthlyPoint, path string) error {
	p := plot.New()
	p.Title.Text = "Monthly Sales Trend by Year"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Total Sales"
	p.Add(plotter.NewGrid())

	ticks := make([]plot.Tick, 12)
	for m := 1; m <= 12; m++ {
		ticks[m-1] = plot.Tick{Value: float64(m), Label: analytics.MonthAbbrev(m)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min, p.X.Max = 0.5, 12.5

	var lines []interface{}
	for _, year := range analytics.Years(points) {
		var xys plotter.XYs
		for _, pt := range points {
			if pt.Year == year {
				xys = append(xys, plotter.XY{X: float64(pt.MonthNum), Y: pt.Total})
			}
		}
		lines = append(lines, strconv.Itoa(year), xys)
	}
	if len(lines) > 0 {
		if err := plotutil.AddLinePoints(p, lines...); err != nil {
			return apperrors.NewReportError("failed to draw monthly trend", err)
		}
	}
	p.Legend.Top = true

	return r.save(p, r.size, path)
}

// HorizontalBar draws totals as horizontal bars, the first total on top
func (r *Renderer) HorizontalBar(chart BarChart, path string) error {
	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel

	n := len(chart.Totals)
	if n > 0 {
		// Bar i sits at y = i, so reverse to put the largest at the top
		values := make(plotter.Values, n)
		names := make([]string, n)
		for i, t := range chart.Totals {
			values[n-1-i] = t.Value
			names[n-1-i] = t.Key
		}

		bars, err := plotter.NewBarChart(values, barWidth(n))
		if err != nil {
			return apperrors.NewReportError("failed to build bar chart", err)
		}
		bars.Horizontal = true
		bars.Color = plotutil.Color(0)
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalY(names...)
	}

	size := chart.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = r.size
	}
	return r.save(p, size, path)
}

func barWidth(n int) vg.Length {
	w := vg.Points(240 / float64(n))
	if w > vg.Points(28) {
		w = vg.Points(28)
	}
	if w < vg.Points(4) {
		w = vg.Points(4)
	}
	return w
}

// Heatmap draws a correlation matrix as an annotated diverging heatmap on a
// fixed -1..1 scale, first column at the top left
func (r *Renderer) Heatmap(m analytics.CorrelationMatrix, path string) error {
	n := len(m.Columns)
	if n == 0 {
		return apperrors.NewReportError("empty correlation matrix", nil)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	grid := correlationGrid{m: m}
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = "Correlation Heatmap"
	p.Add(hm)

	var cells plotter.XYLabels
	for c := 0; c < n; c++ {
		for row := 0; row < n; row++ {
			cells.XYs = append(cells.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(row)})
			cells.Labels = append(cells.Labels, formatCoefficient(grid.Z(c, row)))
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return apperrors.NewReportError("failed to annotate heatmap", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)

	yNames := make([]string, n)
	for i, name := range m.Columns {
		yNames[n-1-i] = name
	}
	p.NominalX(m.Columns...)
	p.NominalY(yNames...)

	return r.save(p, HeatmapSize, path)
}

func formatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

// correlationGrid adapts a CorrelationMatrix to plotter.GridXYZ. Column c of
// the grid is matrix column c; grid row 0 is drawn at the bottom, so matrix
// row i maps to grid row n-1-i.
type correlationGrid struct {
	m analytics.CorrelationMatrix
}

func (g correlationGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g correlationGrid) Z(c, r int) float64 {
	n := len(g.m.Columns)
	return g.m.Values[n-1-r][c]
}

func (g correlationGrid) X(c int) float64 { return float64(c) }

func (g correlationGrid) Y(r int) float64 { return float64(r) }

func (r *Renderer) save(p *plot.Plot, size Size, path string) error {
	if err := p.Save(vg.Length(size.Width)*vg.Inch, vg.Length(size.Height)*vg.Inch, path); err != nil {
		return apperrors.NewStorageError("failed to save chart", err).WithContext("path", path)
	}
	r.logger.Debug("Chart saved",
		slog.String("path", path),
		slog.Float64("width_in", size.Width),
		slog.Float64("height_in", size.Height))
	return nil
}
