// Package pipeline runs the sales report end to end: load, clean, enrich,
// profile, plan, reports, summary tables and the cleaned export.
//
// Missing optional columns never fail a run; they disable the reports that
// need them and are logged as diagnostics. A missing sheet, an unwritable
// output directory or an unresolved supervisor column at the supervisor
// summary step abort the run. Files written before the failure stay on disk.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"salesreport/internal/charts"
	"salesreport/internal/config"
	"salesreport/internal/dataframe"
	"salesreport/internal/dataprocessing"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/exporter"
	"salesreport/internal/infrastructure"
	"salesreport/internal/loader"
	"salesreport/internal/validation"
)

// Pipeline holds the stage components of a run
type Pipeline struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	tracer  *runTracer
	metrics *infrastructure.PipelineMetrics

	validator *validation.FileValidator
	cleaner   *dataprocessing.Cleaner
	enricher  *dataprocessing.Enricher
	profiler  *dataprocessing.Profiler
	renderer  *charts.Renderer
	writer    *exporter.CSVWriter
}

// Option customises a Pipeline
type Option func(*options)

type options struct {
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
}

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTelemetry records spans and metrics on providers
func WithTelemetry(providers *infrastructure.OTelProviders) Option {
	return func(o *options) { o.providers = providers }
}

// New creates a pipeline writing into paths
func New(cfg *config.Config, paths *config.Paths, opts ...Option) (*Pipeline, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = infrastructure.GetLogger()
	}
	logger := infrastructure.WithComponent(o.logger, "pipeline")

	var (
		tracer trace.Tracer
		meter  metric.Meter
	)
	if o.providers != nil {
		tracer = o.providers.Tracer
		meter = o.providers.Meter
	}
	metrics, err := infrastructure.NewPipelineMetrics(meter)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create pipeline metrics", err)
	}

	return &Pipeline{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		tracer:    newRunTracer(tracer, metrics),
		metrics:   metrics,
		validator: validation.NewFileValidator(o.logger),
		cleaner:   dataprocessing.NewCleaner(o.logger),
		enricher:  dataprocessing.NewEnricher(o.logger),
		profiler:  dataprocessing.NewProfiler(o.logger),
		renderer:  charts.NewRenderer(cfg.Reports, o.logger),
		writer:    exporter.NewCSVWriter(paths, o.logger),
	}, nil
}

// Run executes every stage against src. The returned Result is never nil.
func (p *Pipeline) Run(ctx context.Context, src loader.Source) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	result := newResult(infrastructure.GetRunID(ctx))

	ctx, span := p.tracer.traceRun(ctx, result.RunID, src.Name())
	defer span.End()

	start := time.Now()
	p.logger.InfoContext(ctx, "Pipeline started",
		slog.String("source", src.Name()),
		slog.String("output_dir", p.paths.OutputDir))

	if err := p.run(ctx, src, result); err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(p.logger, err).ErrorContext(ctx, "Pipeline failed",
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.Int("files_written", len(result.Files())),
			slog.Duration("duration", time.Since(start)))
		return result, err
	}

	p.logger.InfoContext(ctx, "Pipeline completed",
		slog.Int("files_written", len(result.Files())),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, src loader.Source, result *Result) error {
	err := p.tracer.traceStage(ctx, result, StageOutputDir, func(ctx context.Context) error {
		if err := p.paths.EnsureDirectories(); err != nil {
			return apperrors.NewStorageError("failed to create output directory", err)
		}
		if err := p.validator.ValidateOutputDirectory(p.paths.OutputDir); err != nil {
			return apperrors.NewStorageError("output directory not writable", err).
				WithContext("output_dir", p.paths.OutputDir)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var wb *loader.Workbook
	err = p.tracer.traceStage(ctx, result, StageLoad, func(ctx context.Context) error {
		var err error
		if wb, err = loader.Load(ctx, src, p.cfg.Input, p.logger); err != nil {
			return err
		}
		p.recordLoaded(ctx, p.cfg.Input.SalesSheet, wb.Sales)
		p.recordLoaded(ctx, p.cfg.Input.StateSheet, wb.States)
		p.recordLoaded(ctx, p.cfg.Input.SupervisorSheet, wb.Supervisors)
		return nil
	})
	if err != nil {
		return err
	}

	var cleaned *dataframe.Frame
	err = p.tracer.traceStage(ctx, result, StageClean, func(ctx context.Context) error {
		var err error
		if cleaned, result.Clean, err = p.cleaner.Clean(ctx, wb.Sales); err != nil {
			return err
		}
		p.metrics.RowsDropped.Add(ctx, int64(result.Clean.DroppedMissingKey),
			metric.WithAttributes(attribute.String("reason", "missing_key")))
		p.metrics.RowsDropped.Add(ctx, int64(result.Clean.DroppedDuplicate),
			metric.WithAttributes(attribute.String("reason", "duplicate")))
		p.metrics.NullCoercions.Add(ctx, int64(result.Clean.TotalCoercions()))
		return nil
	})
	if err != nil {
		return err
	}

	var enriched *dataframe.Frame
	err = p.tracer.traceStage(ctx, result, StageEnrich, func(ctx context.Context) error {
		var err error
		if enriched, result.Enrich, err = p.enricher.Enrich(ctx, cleaned, wb.States); err != nil {
			return err
		}
		p.metrics.UnmatchedCodes.Add(ctx, int64(result.Enrich.Unmatched))
		return nil
	})
	if err != nil {
		return err
	}

	err = p.tracer.traceStage(ctx, result, StageProfile, func(ctx context.Context) error {
		result.Profile = p.profiler.Profile(ctx, enriched)
		return nil
	})
	if err != nil {
		return err
	}

	err = p.tracer.traceStage(ctx, result, StagePlan, func(ctx context.Context) error {
		result.Plan = dataprocessing.BuildPlan(enriched, wb.Supervisors)
		result.Plan.Log(ctx, p.logger)
		return nil
	})
	if err != nil {
		return err
	}

	err = p.tracer.traceStage(ctx, result, StageReports, func(ctx context.Context) error {
		return p.runReports(ctx, enriched, result)
	})
	if err != nil {
		return err
	}

	err = p.tracer.traceStage(ctx, result, StageSummaries, func(ctx context.Context) error {
		return p.writeSummaries(ctx, enriched, result)
	})
	if err != nil {
		return err
	}

	err = p.tracer.traceStage(ctx, result, StageSupervisor, func(ctx context.Context) error {
		return p.writeSupervisorSummary(ctx, enriched, result)
	})
	if err != nil {
		return err
	}

	return p.tracer.traceStage(ctx, result, StageExport, func(ctx context.Context) error {
		if err := p.writer.WriteCleanedData(enriched); err != nil {
			return err
		}
		p.fileWritten(ctx, result, p.paths.CleanedDataCSV, "csv")
		return nil
	})
}

func (p *Pipeline) recordLoaded(ctx context.Context, sheet string, f *dataframe.Frame) {
	p.metrics.RowsLoaded.Add(ctx, int64(f.Len()),
		metric.WithAttributes(attribute.String("sheet", sheet)))
}

func (p *Pipeline) fileWritten(ctx context.Context, result *Result, path, kind string) {
	result.addFile(path)
	p.metrics.RecordOutputFile(ctx, kind)
}
