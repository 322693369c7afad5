package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all output paths of a run.
// This is the single source of truth for output file names.
type Paths struct {
	OutputDir string

	// Charts
	MonthlyTrendChart     string
	StateSalesChart       string
	CategorySalesChart    string
	SupervisorChart       string
	TopBrandsChart        string
	ProfitByCategoryChart string
	CorrelationHeatmap    string

	// Tables
	SalesByStateCSV      string
	SalesByCategoryCSV   string
	SupervisorSummaryCSV string
	CleanedDataCSV       string

	MetricsFile string
}

// NewPaths resolves outputDir against the working directory and derives the
// well-known output files inside it.
func NewPaths(outputDir string) (*Paths, error) {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	dir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", outputDir, err)
	}

	return &Paths{
		OutputDir: dir,

		MonthlyTrendChart:     filepath.Join(dir, MonthlyTrendChartFile),
		StateSalesChart:       filepath.Join(dir, StateSalesChartFile),
		CategorySalesChart:    filepath.Join(dir, CategorySalesChartFile),
		SupervisorChart:       filepath.Join(dir, SupervisorChartFile),
		TopBrandsChart:        filepath.Join(dir, TopBrandsChartFile),
		ProfitByCategoryChart: filepath.Join(dir, ProfitByCategoryFile),
		CorrelationHeatmap:    filepath.Join(dir, CorrelationHeatmapFile),

		SalesByStateCSV:      filepath.Join(dir, SalesByStateCSVFile),
		SalesByCategoryCSV:   filepath.Join(dir, SalesByCategoryCSVFile),
		SupervisorSummaryCSV: filepath.Join(dir, SupervisorSummaryCSVFile),
		CleanedDataCSV:       filepath.Join(dir, CleanedDataCSVFile),

		MetricsFile: filepath.Join(dir, DefaultMetricsFile),
	}, nil
}

// WithMetricsFile overrides the metrics dump location. Relative names land
// in the output directory; an empty name disables the dump.
func (p *Paths) WithMetricsFile(name string) *Paths {
	switch {
	case name == "":
		p.MetricsFile = ""
	case filepath.IsAbs(name):
		p.MetricsFile = name
	default:
		p.MetricsFile = filepath.Join(p.OutputDir, name)
	}
	return p
}

// OutputPath returns the location of an arbitrary file in the output directory
func (p *Paths) OutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// EnsureDirectories creates the output directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.OutputDir, err)
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved output paths",
		slog.String("output_dir", p.OutputDir),
		slog.String("cleaned_csv", p.CleanedDataCSV),
		slog.String("metrics_file", p.MetricsFile))
}
