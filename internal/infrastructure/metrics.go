package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Report outcomes recorded on the reports counter
const (
	ReportWritten = "written"
	ReportSkipped = "skipped"
	ReportFailed  = "failed"
)

// PipelineMetrics holds the instruments recorded during a run
type PipelineMetrics struct {
	RowsLoaded     metric.Int64Counter
	RowsDropped    metric.Int64Counter
	NullCoercions  metric.Int64Counter
	UnmatchedCodes metric.Int64Counter
	Reports        metric.Int64Counter
	OutputFiles    metric.Int64Counter
	StageDuration  metric.Float64Histogram
	HeapAlloc      metric.Int64Gauge
	Goroutines     metric.Int64Gauge
}

// NewPipelineMetrics creates the pipeline instruments on meter. A nil meter
// yields no-op instruments.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	rowsLoaded, err := meter.Int64Counter(
		"rows_loaded",
		metric.WithDescription("Rows read from each input sheet"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"rows_dropped",
		metric.WithDescription("Sales rows discarded during cleaning"),
	)
	if err != nil {
		return nil, err
	}

	nullCoercions, err := meter.Int64Counter(
		"null_coercions",
		metric.WithDescription("Non-empty cells turned into nulls by date or numeric coercion"),
	)
	if err != nil {
		return nil, err
	}

	unmatchedCodes, err := meter.Int64Counter(
		"unmatched_region_codes",
		metric.WithDescription("Sales rows whose region code has no lookup entry"),
	)
	if err != nil {
		return nil, err
	}

	reports, err := meter.Int64Counter(
		"reports",
		metric.WithDescription("Reports by outcome"),
	)
	if err != nil {
		return nil, err
	}

	outputFiles, err := meter.Int64Counter(
		"output_files",
		metric.WithDescription("Files written to the output directory"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated at the end of a stage"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	goroutines, err := meter.Int64Gauge(
		"goroutines",
		metric.WithDescription("Goroutines alive at the end of a stage"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:     rowsLoaded,
		RowsDropped:    rowsDropped,
		NullCoercions:  nullCoercions,
		UnmatchedCodes: unmatchedCodes,
		Reports:        reports,
		OutputFiles:    outputFiles,
		StageDuration:  stageDuration,
		HeapAlloc:      heapAlloc,
		Goroutines:     goroutines,
	}, nil
}

// RecordStage records a stage duration together with a runtime snapshot
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, success bool) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", success),
	)
	m.StageDuration.Record(ctx, duration.Seconds(), attrs)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stageAttr := metric.WithAttributes(attribute.String("stage", stage))
	m.HeapAlloc.Record(ctx, int64(mem.HeapAlloc), stageAttr)
	m.Goroutines.Record(ctx, int64(runtime.NumGoroutine()), stageAttr)
}

// RecordReport counts one report outcome
func (m *PipelineMetrics) RecordReport(ctx context.Context, report, outcome string) {
	m.Reports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("report", report),
		attribute.String("outcome", outcome),
	))
}

// RecordOutputFile counts a written file by kind (png, csv)
func (m *PipelineMetrics) RecordOutputFile(ctx context.Context, kind string) {
	m.OutputFiles.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
