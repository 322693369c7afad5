package exporter

import (
	"log/slog"

	"salesreport/internal/analytics"
	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	apperrors "salesreport/internal/errors"
)

// WriteTotals writes a two-column table of group keys and summed values
func (w *CSVWriter) WriteTotals(filePath, keyHeader, valueHeader string, totals []analytics.Total) error {
	records := make([][]string, len(totals))
	for i, t := range totals {
		records[i] = []string{t.Key, formatFloat(t.Value)}
	}
	if err := w.WriteCSV(filePath, WriteOptions{
		Headers: []string{keyHeader, valueHeader},
		Records: records,
	}); err != nil {
		return apperrors.NewStorageError("failed to write "+filePath, err)
	}
	w.logger.Info("Summary table written",
		slog.String("path", w.resolvePath(filePath)),
		slog.Int("rows", len(records)))
	return nil
}

// WriteSupervisorSummary writes the supervisor summary with the supervisor
// column's own name as the key header. The profit column is written only
// when the summary carries profit.
func (w *CSVWriter) WriteSupervisorSummary(filePath, column string, summary []analytics.SupervisorSummary) error {
	withProfit := len(summary) > 0 && summary[0].HasProfit
	headers := []string{column, "total_sales", "orders"}
	if withProfit {
		headers = append(headers, "profit")
	}

	records := make([][]string, len(summary))
	for i, s := range summary {
		rec := []string{s.Supervisor, formatFloat(s.TotalSales), formatInt(s.Orders)}
		if withProfit {
			rec = append(rec, formatFloat(s.Profit))
		}
		records[i] = rec
	}
	if err := w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records}); err != nil {
		return apperrors.NewStorageError("failed to write supervisor summary", err)
	}
	w.logger.Info("Supervisor summary written",
		slog.String("path", w.resolvePath(filePath)),
		slog.Int("rows", len(records)))
	return nil
}

// WriteFrame streams every row of f with its column names as the header.
// Nulls are written as empty cells.
func (w *CSVWriter) WriteFrame(filePath string, f *dataframe.Frame) error {
	stream, err := w.CreateStreamWriter(filePath, f.Names())
	if err != nil {
		return apperrors.NewStorageError("failed to create "+filePath, err)
	}

	cols := f.Columns()
	row := make([]string, len(cols))
	for r := 0; r < f.Len(); r++ {
		for c, s := range cols {
			row[c] = s.Format(r)
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return apperrors.NewStorageError("failed to write row", err).WithContext("row", r)
		}
	}
	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError("failed to close "+filePath, err)
	}

	w.logger.Info("Table exported",
		slog.String("path", w.resolvePath(filePath)),
		slog.Int("rows", stream.Rows()),
		slog.Int("columns", len(cols)))
	return nil
}

// WriteCleanedData exports the full enriched table
func (w *CSVWriter) WriteCleanedData(f *dataframe.Frame) error {
	return w.WriteFrame(config.CleanedDataCSVFile, f)
}
