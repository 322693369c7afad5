package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
)

// CorrelationMatrix holds pairwise Pearson coefficients; Values[i][j] pairs
// Columns[i] with Columns[j]
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// Correlate computes Pearson correlation for every pair of columns using the
// rows where both are non-null. A pair with fewer than two such rows, or a
// constant column, yields NaN.
func Correlate(f *dataframe.Frame, columns []string) (CorrelationMatrix, error) {
	if len(columns) < 2 {
		return CorrelationMatrix{}, apperrors.NewReportError(
			fmt.Sprintf("correlation needs two numeric columns, have %d", len(columns)), nil)
	}
	series := make([]*dataframe.Series, len(columns))
	for i, c := range columns {
		s := f.Column(c)
		if s == nil {
			return CorrelationMatrix{}, apperrors.NewReportError("correlation column "+c, apperrors.ErrColumnNotFound)
		}
		if s.Kind() != dataframe.KindFloat {
			return CorrelationMatrix{}, apperrors.NewReportError(fmt.Sprintf("column %s is not numeric", c), nil)
		}
		series[i] = s
	}

	m := CorrelationMatrix{
		Columns: append([]string(nil), columns...),
		Values:  make([][]float64, len(columns)),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(columns))
	}
	for i := range series {
		for j := i; j < len(series); j++ {
			r := pairwise(series[i], series[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pairwise(a, b *dataframe.Series) float64 {
	var xs, ys []float64
	for r := 0; r < a.Len(); r++ {
		x, okX := a.Float(r)
		y, okY := b.Float(r)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	// Rounding can push perfect correlations just past ±1
	return math.Max(-1, math.Min(1, r))
}
