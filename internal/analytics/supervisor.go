package analytics

import (
	"sort"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
)

// SupervisorSummary is one row of the per-supervisor summary table
type SupervisorSummary struct {
	Supervisor string
	TotalSales float64
	// Orders is the number of distinct order numbers
	Orders int
	// Profit is set when HasProfit
	Profit    float64
	HasProfit bool
}

// SummarizeSupervisors builds the supervisor summary table: summed
// Total_Sales, distinct order count and, when the table has Profit, summed
// profit, largest sales first. An unresolved column returns an error
// wrapping ErrSupervisorColumnUnresolved.
func SummarizeSupervisors(f *dataframe.Frame, column string) ([]SupervisorSummary, error) {
	if column == "" {
		return nil, apperrors.NewReportError("supervisor summary", apperrors.ErrSupervisorColumnUnresolved)
	}
	if !f.HasAll(column, config.ColTotalSales, config.ColOrderNumber) {
		return nil, apperrors.NewReportError("supervisor summary", apperrors.ErrColumnNotFound).
			WithContext("supervisor_column", column)
	}

	groups, err := f.GroupBy(column)
	if err != nil {
		return nil, apperrors.NewReportError("supervisor summary", err)
	}

	sales := f.Column(config.ColTotalSales)
	orders := f.Column(config.ColOrderNumber)
	profit := f.Column(config.ColProfit)

	out := make([]SupervisorSummary, len(groups))
	for i, g := range groups {
		out[i] = SupervisorSummary{
			Supervisor: g.Key(),
			TotalSales: sales.Sum(g.Rows),
			Orders:     orders.NUnique(g.Rows),
		}
		if profit != nil {
			out[i].Profit = profit.Sum(g.Rows)
			out[i].HasProfit = true
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSales > out[j].TotalSales
	})
	return out, nil
}
