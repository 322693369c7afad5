package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"salesreport/internal/validation"
)

// ExcelSource reads sheets from a local .xlsx workbook
type ExcelSource struct {
	path string
	file *excelize.File
}

// OpenExcel validates and opens the workbook at path
func OpenExcel(path string, logger *slog.Logger) (*ExcelSource, error) {
	if err := validation.NewFileValidator(logger).ValidateWorkbook(path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &ExcelSource{path: path, file: f}, nil
}

// Name returns the workbook path
func (s *ExcelSource) Name() string { return s.path }

// SheetNames lists the workbook's sheets in tab order
func (s *ExcelSource) SheetNames(_ context.Context) ([]string, error) {
	return s.file.GetSheetList(), nil
}

// ReadSheet returns the raw cell values of sheet. Dates come back as Excel
// serial numbers and numbers without display formatting.
func (s *ExcelSource) ReadSheet(_ context.Context, sheet string) ([][]string, error) {
	rows, err := s.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// Close releases the workbook
func (s *ExcelSource) Close() error {
	return s.file.Close()
}
