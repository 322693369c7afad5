// Package loader reads the sales, state lookup and supervisor lookup sheets
// into dataframes, from a local workbook or a Google spreadsheet.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
)

// Source reads one sheet as a header row plus data rows
type Source interface {
	// Name identifies the source in logs, e.g. the workbook path
	Name() string
	// SheetNames lists the sheets the source holds
	SheetNames(ctx context.Context) ([]string, error)
	// ReadSheet returns every row of sheet; the first row is the header
	ReadSheet(ctx context.Context, sheet string) ([][]string, error)
	Close() error
}

// Workbook holds the three input tables
type Workbook struct {
	Sales       *dataframe.Frame
	States      *dataframe.Frame
	Supervisors *dataframe.Frame
}

// NewSource opens the source selected by cfg.Source
func NewSource(ctx context.Context, cfg config.InputConfig, logger *slog.Logger) (Source, error) {
	switch cfg.Source {
	case "excel", "":
		src, err := OpenExcel(cfg.Workbook, logger)
		if err != nil {
			return nil, apperrors.NewInputError("failed to open workbook", err).
				WithContext("workbook", cfg.Workbook)
		}
		return src, nil
	case "sheets":
		creds, err := SheetsCredentialsFile(cfg.CredentialsFile)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid sheets credentials", err)
		}
		src, err := NewSheetsSource(ctx, cfg.SpreadsheetID, creds)
		if err != nil {
			return nil, apperrors.NewInputError("failed to connect to spreadsheet", err).
				WithContext("spreadsheet_id", cfg.SpreadsheetID)
		}
		return src, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unsupported input source %q", cfg.Source), nil)
	}
}

// Load reads the three configured sheets from src. A missing sheet is a
// structural failure wrapping ErrSheetNotFound.
func Load(ctx context.Context, src Source, cfg config.InputConfig, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	available, err := src.SheetNames(ctx)
	if err != nil {
		return nil, apperrors.NewInputError("failed to list sheets", err).
			WithContext("source", src.Name())
	}
	present := make(map[string]bool, len(available))
	for _, name := range available {
		present[name] = true
	}

	read := func(sheet string) (*dataframe.Frame, error) {
		if !present[sheet] {
			logger.ErrorContext(ctx, "Required sheet missing",
				slog.String("source", src.Name()),
				slog.String("sheet", sheet),
				slog.Any("available", available))
			return nil, apperrors.NewInputError(fmt.Sprintf("sheet %q", sheet), apperrors.ErrSheetNotFound).
				WithContext("source", src.Name())
		}
		rows, err := src.ReadSheet(ctx, sheet)
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to read sheet %q", sheet), err).
				WithContext("source", src.Name())
		}
		frame := toFrame(rows)
		logger.InfoContext(ctx, "Sheet loaded",
			slog.String("sheet", sheet),
			slog.Int("rows", frame.Len()),
			slog.Int("columns", frame.Width()),
			slog.Any("column_names", frame.Names()))
		return frame, nil
	}

	wb := &Workbook{}
	if wb.Sales, err = read(cfg.SalesSheet); err != nil {
		return nil, err
	}
	if wb.States, err = read(cfg.StateSheet); err != nil {
		return nil, err
	}
	if wb.Supervisors, err = read(cfg.SupervisorSheet); err != nil {
		return nil, err
	}
	return wb, nil
}

// toFrame treats the first row as the header and skips fully blank rows
func toFrame(rows [][]string) *dataframe.Frame {
	if len(rows) == 0 {
		return dataframe.Empty()
	}
	header := append([]string(nil), rows[0]...)
	width := len(header)
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) > width {
			width = len(row)
		}
		data = append(data, row)
	}
	// Cells beyond the header get unnamed columns
	for len(header) < width {
		header = append(header, "")
	}
	return dataframe.FromRecords(header, data)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
