// Package analytics computes the summary tables behind each report from the
// enriched sales table.
package analytics

import (
	"fmt"
	"sort"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
)

// Total is a summed value for one group key
type Total struct {
	Key   string
	Value float64
}

// SumBy groups f by key and sums value, nulls skipped. Rows with a null key
// are left out. The result is sorted by value descending; equal values keep
// ascending key order.
func SumBy(f *dataframe.Frame, key, value string) ([]Total, error) {
	groups, err := f.GroupBy(key)
	if err != nil {
		return nil, apperrors.NewReportError("group by "+key, apperrors.ErrColumnNotFound).
			WithContext("detail", err.Error())
	}
	values := f.Column(value)
	if values == nil {
		return nil, apperrors.NewReportError("sum "+value, apperrors.ErrColumnNotFound)
	}
	if values.Kind() != dataframe.KindFloat {
		return nil, apperrors.NewReportError(fmt.Sprintf("column %s is not numeric", value), nil)
	}

	totals := make([]Total, len(groups))
	for i, g := range groups {
		totals[i] = Total{Key: g.Key(), Value: values.Sum(g.Rows)}
	}
	SortDescending(totals)
	return totals, nil
}

// SortDescending orders totals by value, largest first, keeping the current
// order of ties
func SortDescending(totals []Total) {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Value > totals[j].Value
	})
}

// TopN returns at most the first n totals
func TopN(totals []Total, n int) []Total {
	if n >= 0 && len(totals) > n {
		return totals[:n]
	}
	return totals
}

// SalesByState sums Total_Sales per region name
func SalesByState(f *dataframe.Frame) ([]Total, error) {
	return SumBy(f, config.ColState, config.ColTotalSales)
}

// SalesByCategory sums Total_Sales per category
func SalesByCategory(f *dataframe.Frame) ([]Total, error) {
	return SumBy(f, config.ColCategory, config.ColTotalSales)
}

// SalesByBrand sums Total_Sales per brand
func SalesByBrand(f *dataframe.Frame) ([]Total, error) {
	return SumBy(f, config.ColBrand, config.ColTotalSales)
}

// ProfitByCategory sums Profit per category
func ProfitByCategory(f *dataframe.Frame) ([]Total, error) {
	return SumBy(f, config.ColCategory, config.ColProfit)
}

// SalesBySupervisor sums Total_Sales per value of the resolved supervisor
// column
func SalesBySupervisor(f *dataframe.Frame, column string) ([]Total, error) {
	if column == "" {
		return nil, apperrors.NewReportError("supervisor sales", apperrors.ErrSupervisorColumnUnresolved)
	}
	return SumBy(f, column, config.ColTotalSales)
}
