package loader

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets API read quota is 60 requests per minute per user. A load issues
// four requests, which the burst covers.
const (
	sheetsRequestsPerSecond = 1
	sheetsBurst             = 4
)

// SheetsSource reads sheets from a Google spreadsheet
type SheetsSource struct {
	spreadsheetID string
	service       *sheets.Service
	limiter       *rate.Limiter
}

// SheetsOption configures the Sheets client
type SheetsOption = option.ClientOption

// SheetsCredentialsFile authenticates with a service-account JSON file. An
// empty path falls back to application default credentials.
func SheetsCredentialsFile(path string) (SheetsOption, error) {
	if path == "" {
		return option.WithScopes(sheets.SpreadsheetsReadonlyScope), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return option.WithCredentialsJSON(data), nil
}

// NewSheetsSource creates a read-only client for spreadsheetID
func NewSheetsSource(ctx context.Context, spreadsheetID string, opts ...SheetsOption) (*SheetsSource, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsSource{
		spreadsheetID: spreadsheetID,
		service:       service,
		limiter:       rate.NewLimiter(rate.Limit(sheetsRequestsPerSecond), sheetsBurst),
	}, nil
}

// Name returns the spreadsheet id
func (s *SheetsSource) Name() string { return "sheets:" + s.spreadsheetID }

// SheetNames lists the spreadsheet's tab titles
func (s *SheetsSource) SheetNames(ctx context.Context) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	names := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}
	return names, nil
}

// ReadSheet fetches the whole sheet unformatted, with dates as serial numbers
// so they parse the same way as workbook cells
func (s *SheetsSource) ReadSheet(ctx context.Context, sheet string) ([][]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	rng := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get values: %w", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellText(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// Close is a no-op; the HTTP client is shared
func (s *SheetsSource) Close() error { return nil }

func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(val)
	}
}
