package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"salesreport/internal/config"
	"salesreport/internal/infrastructure"
	"salesreport/internal/loader"
	"salesreport/internal/pipeline"
)

// cliFlags are command line overrides applied on top of the loaded config
type cliFlags struct {
	configPath string
	workbook   string
	outDir     string
	sheetID    string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "path to a YAML or TOML config file")
	fs.StringVar(&f.workbook, "workbook", "", "input workbook (overrides input.workbook)")
	fs.StringVar(&f.outDir, "out", "", "output directory (overrides output.dir)")
	fs.StringVar(&f.sheetID, "spreadsheet", "", "read a Google spreadsheet instead of a workbook")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

// apply overlays the flags onto cfg and revalidates it
func (f cliFlags) apply(cfg *config.Config) error {
	if f.workbook != "" {
		cfg.Input.Source = "excel"
		cfg.Input.Workbook = f.workbook
	}
	if f.sheetID != "" {
		cfg.Input.Source = "sheets"
		cfg.Input.SpreadsheetID = f.sheetID
	}
	if f.outDir != "" {
		cfg.Output.Dir = f.outDir
	}
	return cfg.Validate()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseFlags(args, os.Stderr)
	if err != nil {
		return 2
	}
	if flags.version {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return 0
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if err := flags.apply(cfg); err != nil {
		slog.Error("Invalid command line overrides", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.NewPaths(cfg.Output.Dir)
	if err != nil {
		logger.Error("Failed to resolve output paths", "error", err)
		return 1
	}
	paths.WithMetricsFile(cfg.Telemetry.MetricsFile)
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	src, err := loader.NewSource(ctx, cfg.Input, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open input", "error", err)
		return 1
	}
	defer src.Close()

	p, err := pipeline.New(cfg, paths, pipeline.WithLogger(logger), pipeline.WithTelemetry(providers))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create pipeline", "error", err)
		return 1
	}

	result, runErr := p.Run(ctx, src)

	// Metrics are dumped for failed runs too
	if err := providers.WriteMetricsTextfile(paths.MetricsFile); err != nil {
		logger.WarnContext(ctx, "Failed to write metrics", "error", err)
	}

	if runErr != nil {
		return 1
	}
	logger.InfoContext(ctx, "CSV exports saved",
		slog.String("output_dir", paths.OutputDir),
		slog.Int("files", len(result.Files())))
	return 0
}
