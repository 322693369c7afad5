package dataprocessing

import (
	"context"
	"log/slog"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
)

// Suffixes given to a column present in both the sales sheet and the state
// lookup. Neither copy keeps the bare name.
const (
	SalesSuffix  = "_x"
	LookupSuffix = "_y"
)

// Diagnostic steps logged by the enricher
const (
	StepStateJoin  = "state_join"
	StepTotalSales = "total_sales"
	StepTotalCost  = "total_cost"
	StepProfit     = "profit"
)

// EnrichStats reports what enrichment added
type EnrichStats struct {
	JoinSkipped         bool
	Matched             int
	Unmatched           int
	DuplicateStateCodes []string
	ComputedTotalSales  bool
	ComputedTotalCost   bool
	ProfitComputed      bool
}

// Enricher adds region names, order totals, calendar fields and profit to
// cleaned sales rows
type Enricher struct {
	logger *slog.Logger
}

// NewEnricher creates an enricher
func NewEnricher(logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Enricher{logger: logger}
}

// Enrich runs the region join, total computation, calendar derivation and
// profit computation, in that order. Every missing input is a diagnostic;
// no row is ever removed.
func (e *Enricher) Enrich(ctx context.Context, sales, states *dataframe.Frame) (*dataframe.Frame, EnrichStats, error) {
	var stats EnrichStats
	out := sales

	var err error
	if out, err = e.joinStates(ctx, out, states, &stats); err != nil {
		return nil, stats, err
	}

	if out, stats.ComputedTotalSales, err = e.computeTotal(ctx, out, config.ColTotalSales, config.ColSales, StepTotalSales); err != nil {
		return nil, stats, err
	}
	if out, stats.ComputedTotalCost, err = e.computeTotal(ctx, out, config.ColTotalCost, config.ColCost, StepTotalCost); err != nil {
		return nil, stats, err
	}

	if out, err = AddCalendar(out); err != nil {
		return nil, stats, apperrors.NewParsingError("failed to derive calendar fields", err)
	}

	if out.HasAll(config.ColTotalSales, config.ColTotalCost) {
		profit := Difference(config.ColProfit, floatColumn(out, config.ColTotalSales), floatColumn(out, config.ColTotalCost))
		if out, err = out.WithColumn(profit); err != nil {
			return nil, stats, apperrors.NewParsingError("failed to add profit", err)
		}
		stats.ProfitComputed = true
	} else {
		infrastructure.Diagnostic(ctx, e.logger, StepProfit,
			"Cannot compute Profit - Total_Sales or Total_Cost missing")
	}

	e.logger.InfoContext(ctx, "Sales rows enriched",
		slog.Int("rows", out.Len()),
		slog.Int("columns", out.Width()),
		slog.Bool("computed_total_sales", stats.ComputedTotalSales),
		slog.Bool("computed_total_cost", stats.ComputedTotalCost),
		slog.Bool("profit", stats.ProfitComputed))

	return out, stats, nil
}

func (e *Enricher) joinStates(ctx context.Context, sales, states *dataframe.Frame, stats *EnrichStats) (*dataframe.Frame, error) {
	if states == nil || !states.Has(config.ColStateCode) || !sales.Has(config.ColStateCode) {
		stats.JoinSkipped = true
		infrastructure.Diagnostic(ctx, e.logger, StepStateJoin,
			"State_Code column missing in one of sheets")
		return sales, nil
	}

	out, js, err := sales.LeftJoin(states, config.ColStateCode, SalesSuffix, LookupSuffix)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to join state lookup", err)
	}
	stats.Matched = js.Matched
	stats.Unmatched = js.Unmatched
	stats.DuplicateStateCodes = js.DuplicateKeys

	if len(js.DuplicateKeys) > 0 {
		infrastructure.Diagnostic(ctx, e.logger, StepStateJoin,
			"State lookup repeats codes; first entry used",
			slog.Any("codes", js.DuplicateKeys))
	}
	if len(js.Collisions) > 0 {
		infrastructure.Diagnostic(ctx, e.logger, StepStateJoin,
			"Columns present in both sales and state sheets were suffixed "+SalesSuffix+"/"+LookupSuffix,
			slog.Any("columns", js.Collisions))
	}
	e.logger.InfoContext(ctx, "State names joined",
		slog.Int("matched", js.Matched),
		slog.Int("unmatched", js.Unmatched))
	return out, nil
}

// computeTotal adds total = unit × Quantity when total is absent and both
// inputs exist. An existing total is never overwritten.
func (e *Enricher) computeTotal(ctx context.Context, f *dataframe.Frame, total, unit, step string) (*dataframe.Frame, bool, error) {
	if f.Has(total) {
		return f, false, nil
	}
	if !f.HasAll(unit, config.ColQuantity) {
		infrastructure.Diagnostic(ctx, e.logger, step,
			total+" missing and cannot compute ("+unit+"/Quantity absent)")
		return f, false, nil
	}

	product := Product(total, floatColumn(f, unit), floatColumn(f, config.ColQuantity))
	out, err := f.WithColumn(product)
	if err != nil {
		return nil, false, apperrors.NewParsingError("failed to add "+total, err)
	}
	e.logger.InfoContext(ctx, "Computed "+total+" = "+unit+" * Quantity")
	return out, true, nil
}

// floatColumn returns the named column as numbers, coercing text if needed
func floatColumn(f *dataframe.Frame, name string) *dataframe.Series {
	s, _ := ToFloat(f.Column(name))
	return s
}

// Product multiplies two numeric columns elementwise; a null in either input
// gives a null
func Product(name string, a, b *dataframe.Series) *dataframe.Series {
	return combine(name, a, b, func(x, y float64) float64 { return x * y })
}

// Difference subtracts b from a elementwise; a null in either input gives a
// null
func Difference(name string, a, b *dataframe.Series) *dataframe.Series {
	return combine(name, a, b, func(x, y float64) float64 { return x - y })
}

func combine(name string, a, b *dataframe.Series, op func(x, y float64) float64) *dataframe.Series {
	values := make([]float64, a.Len())
	valid := make([]bool, a.Len())
	for i := range values {
		x, okA := a.Float(i)
		y, okB := b.Float(i)
		if okA && okB {
			values[i], valid[i] = op(x, y), true
		}
	}
	return dataframe.NewFloatSeries(name, values, valid)
}

// AddCalendar derives Year, Month (name), Month_Num, Day and Weekday (name)
// from Order_Date. Null dates give null calendar fields.
func AddCalendar(f *dataframe.Frame) (*dataframe.Frame, error) {
	if !f.Has(config.ColOrderDate) {
		return nil, apperrors.ErrColumnNotFound
	}
	dates, _ := ToTime(f.Column(config.ColOrderDate))
	n := dates.Len()

	year := make([]float64, n)
	monthNum := make([]float64, n)
	day := make([]float64, n)
	month := make([]string, n)
	weekday := make([]string, n)
	valid := make([]bool, n)

	for i := 0; i < n; i++ {
		t, ok := dates.Time(i)
		if !ok {
			continue
		}
		valid[i] = true
		year[i] = float64(t.Year())
		monthNum[i] = float64(t.Month())
		day[i] = float64(t.Day())
		month[i] = t.Month().String()
		weekday[i] = t.Weekday().String()
	}

	out := f
	var err error
	for _, s := range []*dataframe.Series{
		dataframe.NewFloatSeries(config.ColYear, year, valid),
		dataframe.NewStringSeries(config.ColMonth, month, valid),
		dataframe.NewFloatSeries(config.ColMonthNum, monthNum, valid),
		dataframe.NewFloatSeries(config.ColDay, day, valid),
		dataframe.NewStringSeries(config.ColWeekday, weekday, valid),
	} {
		if out, err = out.WithColumn(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}
