package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	"salesreport/internal/infrastructure"
)

// TopValueLimit caps the value counts listed per column
const TopValueLimit = 10

// MissingCount is the null count of one column
type MissingCount struct {
	Column string
	Nulls  int
}

// ColumnSummary is the describe() row of a numeric column plus its total.
// Statistics of an empty column are NaN; Std needs at least two values.
type ColumnSummary struct {
	Column string
	Count  int
	Sum    float64
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// ValueCount is how often a value occurs in a column
type ValueCount struct {
	Value string
	Count int
}

// Profile is the quick-check summary of the enriched sales table
type Profile struct {
	Rows      int
	Columns   int
	Missing   []MissingCount
	Numeric   []ColumnSummary
	TopValues map[string][]ValueCount
}

// Profiler logs summary statistics of the enriched table
type Profiler struct {
	logger *slog.Logger
}

// NewProfiler creates a profiler
func NewProfiler(logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Profiler{logger: logger}
}

// Profile computes and logs the table shape, per-column null counts,
// describe() for the numeric columns present and the most frequent
// categories, brands and states
func (p *Profiler) Profile(ctx context.Context, f *dataframe.Frame) Profile {
	prof := Profile{
		Rows:      f.Len(),
		Columns:   f.Width(),
		TopValues: map[string][]ValueCount{},
	}

	for _, s := range f.Columns() {
		prof.Missing = append(prof.Missing, MissingCount{Column: s.Name(), Nulls: s.NullCount()})
	}

	for _, col := range f.Present(config.NumericColumns...) {
		prof.Numeric = append(prof.Numeric, Describe(f.Column(col)))
	}

	for _, col := range f.Present(config.ColCategory, config.ColBrand, config.ColState) {
		prof.TopValues[col] = TopValues(f.Column(col), TopValueLimit)
	}

	missing := make(map[string]int, len(prof.Missing))
	for _, m := range prof.Missing {
		missing[m.Column] = m.Nulls
	}
	p.logger.InfoContext(ctx, "Enriched table profile",
		slog.Int("rows", prof.Rows),
		slog.Int("columns", prof.Columns),
		slog.Any("missing", missing))
	for _, s := range prof.Numeric {
		p.logger.DebugContext(ctx, "Numeric summary",
			slog.String("column", s.Column),
			slog.Int("count", s.Count),
			statAttr("sum", s.Sum),
			statAttr("mean", s.Mean),
			statAttr("std", s.Std),
			statAttr("min", s.Min),
			statAttr("p25", s.Q25),
			statAttr("p50", s.Median),
			statAttr("p75", s.Q75),
			statAttr("max", s.Max))
	}
	for col, counts := range prof.TopValues {
		p.logger.DebugContext(ctx, "Top values",
			slog.String("column", col),
			slog.Any("counts", counts))
	}
	return prof
}

// Describe summarises the non-null values of a numeric column
func Describe(s *dataframe.Series) ColumnSummary {
	values, _ := s.Floats()
	sum := ColumnSummary{Column: s.Name(), Count: len(values), Sum: s.SumAll()}
	nan := math.NaN()
	if len(values) == 0 {
		sum.Mean, sum.Std, sum.Min, sum.Q25, sum.Median, sum.Q75, sum.Max = nan, nan, nan, nan, nan, nan, nan
		return sum
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum.Mean = stat.Mean(sorted, nil)
	sum.Std = nan
	if len(sorted) > 1 {
		sum.Std = stat.StdDev(sorted, nil)
	}
	sum.Min = floats.Min(sorted)
	sum.Max = floats.Max(sorted)
	sum.Q25 = quantile(sorted, 0.25)
	sum.Median = quantile(sorted, 0.5)
	sum.Q75 = quantile(sorted, 0.75)
	return sum
}

// statAttr logs non-finite statistics as text; the JSON handler cannot
// encode NaN or Inf.
func statAttr(key string, v float64) slog.Attr {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return slog.String(key, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return slog.Float64(key, v)
}

// quantile interpolates linearly between closest ranks, h = (n-1)p, which is
// the convention describe() reports use. sorted must be ascending.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// TopValues returns up to limit most frequent non-null values
func TopValues(s *dataframe.Series, limit int) []ValueCount {
	groups := s.ValueCounts()
	if len(groups) > limit {
		groups = groups[:limit]
	}
	out := make([]ValueCount, len(groups))
	for i, g := range groups {
		out[i] = ValueCount{Value: g.Key(), Count: len(g.Rows)}
	}
	return out
}
