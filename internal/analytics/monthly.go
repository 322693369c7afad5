package analytics

import (
	"time"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
)

// MonthlyPoint is the sales total of one calendar month
type MonthlyPoint struct {
	Year     int
	MonthNum int
	Month    string
	Total    float64
}

// MonthlyTrend sums Total_Sales per (Year, Month_Num, Month), ascending by
// year then month. Rows without an order date are left out.
func MonthlyTrend(f *dataframe.Frame) ([]MonthlyPoint, error) {
	if !f.HasAll(config.ColYear, config.ColMonthNum, config.ColMonth, config.ColTotalSales) {
		return nil, apperrors.NewReportError("monthly trend", apperrors.ErrColumnNotFound)
	}
	groups, err := f.GroupBy(config.ColYear, config.ColMonthNum, config.ColMonth)
	if err != nil {
		return nil, apperrors.NewReportError("monthly trend", err)
	}

	years := f.Column(config.ColYear)
	months := f.Column(config.ColMonthNum)
	sales := f.Column(config.ColTotalSales)

	points := make([]MonthlyPoint, 0, len(groups))
	for _, g := range groups {
		y, _ := years.Float(g.First())
		m, _ := months.Float(g.First())
		points = append(points, MonthlyPoint{
			Year:     int(y),
			MonthNum: int(m),
			Month:    g.Keys[2],
			Total:    sales.Sum(g.Rows),
		})
	}
	return points, nil
}

// Years lists the distinct years of points in ascending order
func Years(points []MonthlyPoint) []int {
	var years []int
	for _, p := range points {
		if len(years) == 0 || years[len(years)-1] != p.Year {
			years = append(years, p.Year)
		}
	}
	return years
}

// MonthAbbrev returns the three-letter name of month 1..12
func MonthAbbrev(month int) string {
	return time.Month(month).String()[:3]
}
