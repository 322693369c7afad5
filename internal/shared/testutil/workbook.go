package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook; Rows[0] is the header
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook saves sheets, in order, to name inside a temp directory and
// returns the path
func WriteWorkbook(t *testing.T, name string, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	keepDefault := false
	for _, sh := range sheets {
		if sh.Name == defaultSheet {
			keepDefault = true
			continue
		}
		_, err := f.NewSheet(sh.Name)
		require.NoError(t, err)
	}

	for _, sh := range sheets {
		for i, row := range sh.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sh.Name, cell, &values))
		}
	}
	if !keepDefault {
		require.NoError(t, f.DeleteSheet(defaultSheet))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// Date is a midnight UTC date for fixture rows
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SalesHeader is the column layout of SalesRows
var SalesHeader = []interface{}{
	"Order_Number", "Order_Date", "State_Code", "Category", "Brand",
	"Assigned Supervisor", "Cost", "Sales", "Quantity",
}

// SalesRows returns a small sales sheet covering the cleaning edge cases:
// a duplicate order id (SO1, second copy later and different), a row with no
// order date, an unknown state code (ZZ) and unparseable date and price cells.
func SalesRows() [][]interface{} {
	return [][]interface{}{
		SalesHeader,
		{"SO1", Date(2024, time.January, 15), "NY", "Electronics", "Acme", "Alice", 60, 100, 2},
		{"SO2", Date(2024, time.February, 10), "CA", "Furniture", "Zen", "Bob", 30, 50, 4},
		{"SO3", Date(2024, time.January, 20), "TX", "Electronics", "Bolt", "Alice", 5, 10, 10},
		{"SO1", Date(2024, time.March, 1), "NY", "Electronics", "Acme", "Carol", 1, 1, 1},
		{"SO4", nil, "NY", "Office", "Acme", "Carol", 1, 2, 3},
		{"SO5", Date(2023, time.December, 5), "ZZ", "Furniture", "Zen", "Bob", 20, 40, 1},
		{"SO6", "not a date", "CA", "Office", "Acme", "Carol", 2, "n/a", 3},
	}
}

// StateRows returns the state lookup sheet for SalesRows
func StateRows() [][]interface{} {
	return [][]interface{}{
		{"State_Code", "State"},
		{"NY", "New York"},
		{"CA", "California"},
		{"TX", "Texas"},
	}
}

// SupervisorRows returns the supervisor lookup sheet
func SupervisorRows() [][]interface{} {
	return [][]interface{}{
		{"Supervisor_ID", "Supervisor"},
		{"S1", "Alice"},
		{"S2", "Bob"},
		{"S3", "Carol"},
	}
}

// SalesWorkbook writes the standard three-sheet fixture, letting callers
// replace the sales rows
func SalesWorkbook(t *testing.T, sales [][]interface{}) string {
	t.Helper()
	if sales == nil {
		sales = SalesRows()
	}
	return WriteWorkbook(t, "Sales_Data.xlsx",
		Sheet{Name: "Sales_Data", Rows: sales},
		Sheet{Name: "State_list", Rows: StateRows()},
		Sheet{Name: "Supervisor", Rows: SupervisorRows()},
	)
}

// DropColumn returns rows without the named header column
func DropColumn(rows [][]interface{}, name string) [][]interface{} {
	idx := -1
	for i, h := range rows[0] {
		if h == name {
			idx = i
		}
	}
	if idx < 0 {
		return rows
	}
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		r := make([]interface{}, 0, len(row)-1)
		r = append(r, row[:idx]...)
		r = append(r, row[idx+1:]...)
		out[i] = r
	}
	return out
}
