package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	apperrors "salesreport/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SALESREPORT"

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" toml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" toml:"output" envconfig:"OUTPUT"`
	Reports   ReportsConfig   `yaml:"reports" toml:"reports" envconfig:"REPORTS"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig selects where the three sheets are read from
type InputConfig struct {
	Source          string `yaml:"source" toml:"source" envconfig:"SOURCE" validate:"oneof=excel sheets"`
	Workbook        string `yaml:"workbook" toml:"workbook" envconfig:"WORKBOOK" validate:"required_if=Source excel"`
	SpreadsheetID   string `yaml:"spreadsheet_id" toml:"spreadsheet_id" envconfig:"SPREADSHEET_ID" validate:"required_if=Source sheets"`
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	SalesSheet      string `yaml:"sales_sheet" toml:"sales_sheet" envconfig:"SALES_SHEET" validate:"required"`
	StateSheet      string `yaml:"state_sheet" toml:"state_sheet" envconfig:"STATE_SHEET" validate:"required"`
	SupervisorSheet string `yaml:"supervisor_sheet" toml:"supervisor_sheet" envconfig:"SUPERVISOR_SHEET" validate:"required"`
}

// OutputConfig contains output location configuration
type OutputConfig struct {
	Dir string `yaml:"dir" toml:"dir" envconfig:"DIR" validate:"required"`
}

// ReportsConfig tunes the report stage
type ReportsConfig struct {
	TopStates      int     `yaml:"top_states" toml:"top_states" envconfig:"TOP_STATES" validate:"min=1"`
	TopSupervisors int     `yaml:"top_supervisors" toml:"top_supervisors" envconfig:"TOP_SUPERVISORS" validate:"min=1"`
	TopBrands      int     `yaml:"top_brands" toml:"top_brands" envconfig:"TOP_BRANDS" validate:"min=1"`
	Parallelism    int     `yaml:"parallelism" toml:"parallelism" envconfig:"PARALLELISM" validate:"min=1,max=16"`
	ChartWidth     float64 `yaml:"chart_width_in" toml:"chart_width_in" envconfig:"CHART_WIDTH_IN" validate:"gt=0"`
	ChartHeight    float64 `yaml:"chart_height_in" toml:"chart_height_in" envconfig:"CHART_HEIGHT_IN" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" toml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" toml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" toml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" toml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string  `yaml:"environment" toml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" toml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" toml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" toml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	MetricsFile    string  `yaml:"metrics_file" toml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional config file, a
// .env file and the environment. An empty path searches the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("path", path)
		}
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	// Fields without a matching variable keep their current value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays a YAML or TOML file onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

// Validate checks the configuration and normalises a few values
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}

	return nil
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"salesreport.yaml",
		"salesreport.yml",
		"salesreport.toml",
		"configs/salesreport.yaml",
		"configs/salesreport.toml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Source:          "excel",
			Workbook:        DefaultWorkbook,
			SalesSheet:      DefaultSalesSheet,
			StateSheet:      DefaultStateSheet,
			SupervisorSheet: DefaultSupervisorSheet,
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		Reports: ReportsConfig{
			TopStates:      DefaultTopStates,
			TopSupervisors: DefaultTopSupervisors,
			TopBrands:      DefaultTopBrands,
			Parallelism:    1,
			ChartWidth:     DefaultChartWidth,
			ChartHeight:    DefaultChartHeight,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			MetricsFile:    DefaultMetricsFile,
		},
	}
}
