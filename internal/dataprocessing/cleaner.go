package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
)

// dateLayouts are tried in order for text dates. Slash dates are read
// month first, then day first when the first part cannot be a month.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-Jan-2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// CleanStats reports what cleaning removed or coerced
type CleanStats struct {
	RowsIn            int
	DroppedMissingKey int
	DroppedDuplicate  int
	RowsOut           int
	// DateCoercions counts non-empty order dates that did not parse
	DateCoercions int
	// NumericCoercions counts non-empty cells per numeric column that did
	// not parse
	NumericCoercions map[string]int
}

// Cleaner drops incomplete and duplicate sales rows and types the date and
// numeric columns
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Cleaner{logger: logger}
}

// Clean applies, in order: drop rows missing any required key, drop repeated
// order numbers keeping the first, parse Order_Date, coerce the numeric
// columns that are present. Unparseable dates and numbers become nulls. A
// missing key column is a structural error.
func (c *Cleaner) Clean(ctx context.Context, sales *dataframe.Frame) (*dataframe.Frame, CleanStats, error) {
	stats := CleanStats{RowsIn: sales.Len(), NumericCoercions: map[string]int{}}

	for _, col := range config.RequiredKeyColumns {
		if !sales.Has(col) {
			return nil, stats, apperrors.NewInputError("sales sheet is missing column "+strconv.Quote(col), apperrors.ErrColumnNotFound).
				WithContext("column", col).
				WithContext("columns", sales.Names())
		}
	}

	out, dropped, err := sales.DropNulls(config.RequiredKeyColumns...)
	if err != nil {
		return nil, stats, apperrors.NewParsingError("failed to drop incomplete rows", err)
	}
	stats.DroppedMissingKey = dropped

	out, dropped, err = out.DropDuplicates(config.ColOrderNumber)
	if err != nil {
		return nil, stats, apperrors.NewParsingError("failed to drop duplicate orders", err)
	}
	stats.DroppedDuplicate = dropped

	dates, coerced := ToTime(out.Column(config.ColOrderDate))
	stats.DateCoercions = coerced
	if out, err = out.WithColumn(dates); err != nil {
		return nil, stats, apperrors.NewParsingError("failed to replace order dates", err)
	}

	for _, col := range out.Present(config.NumericColumns...) {
		nums, coerced := ToFloat(out.Column(col))
		stats.NumericCoercions[col] = coerced
		if out, err = out.WithColumn(nums); err != nil {
			return nil, stats, apperrors.NewParsingError("failed to replace numeric column "+col, err)
		}
	}
	stats.RowsOut = out.Len()

	c.logger.InfoContext(ctx, "Sales rows cleaned",
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("dropped_missing_key", stats.DroppedMissingKey),
		slog.Int("dropped_duplicate", stats.DroppedDuplicate),
		slog.Int("rows_out", stats.RowsOut),
		slog.Int("date_coercions", stats.DateCoercions),
		slog.Any("numeric_coercions", stats.NumericCoercions))

	return out, stats, nil
}

// TotalCoercions sums date and numeric coercions
func (s CleanStats) TotalCoercions() int {
	n := s.DateCoercions
	for _, v := range s.NumericCoercions {
		n += v
	}
	return n
}

// maxExcelSerial is 9999-12-31, the last date a workbook can hold
const maxExcelSerial = 2958465

// ParseDate reads a cell as a timestamp. Four-digit integers are years and
// eight-digit integers are YYYYMMDD; other numbers are Excel serial dates.
// Text is tried against the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if isDigits(s) {
		switch len(s) {
		case 4:
			t, err := time.Parse("2006", s)
			return t, err == nil
		case 8:
			t, err := time.Parse("20060102", s)
			return t, err == nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 || serial > maxExcelSerial || math.IsNaN(serial) {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ParseNumber reads a cell as a float. TRUE and FALSE count as 1 and 0.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, false
	case "TRUE", "True", "true":
		return 1, true
	case "FALSE", "False", "false":
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ToTime converts a column to timestamps and counts the non-null cells that
// failed to parse. Columns that are already timestamps pass through.
func ToTime(s *dataframe.Series) (*dataframe.Series, int) {
	if s.Kind() == dataframe.KindTime {
		return s, 0
	}
	values := make([]time.Time, s.Len())
	valid := make([]bool, s.Len())
	coerced := 0
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			continue
		}
		if t, ok := ParseDate(s.Format(i)); ok {
			values[i], valid[i] = t, true
		} else {
			coerced++
		}
	}
	return dataframe.NewTimeSeries(s.Name(), values, valid), coerced
}

// ToFloat converts a column to numbers and counts the non-null cells that
// failed to parse. Numeric columns pass through.
func ToFloat(s *dataframe.Series) (*dataframe.Series, int) {
	if s.Kind() == dataframe.KindFloat {
		return s, 0
	}
	values := make([]float64, s.Len())
	valid := make([]bool, s.Len())
	coerced := 0
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			continue
		}
		if v, ok := ParseNumber(s.Format(i)); ok {
			values[i], valid[i] = v, true
		} else {
			coerced++
		}
	}
	return dataframe.NewFloatSeries(s.Name(), values, valid), coerced
}
