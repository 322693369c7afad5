package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salesreport/internal/infrastructure"
)

const (
	TracerName = "salesreport.pipeline"
)

// runTracer provides OpenTelemetry instrumentation for pipeline stages and
// reports
type runTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

func newRunTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *runTracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &runTracer{tracer: tracer, metrics: metrics}
}

// traceRun creates the root span of a run
func (rt *runTracer) traceRun(ctx context.Context, runID, source string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.source", source),
		),
	)
}

// traceStage runs fn inside a span named after the stage and records its
// duration. The returned error is fn's.
func (rt *runTracer) traceStage(ctx context.Context, result *Result, stage string, fn func(context.Context) error) error {
	ctx, span := rt.tracer.Start(ctx, "pipeline.stage."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("stage.name", stage)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	rt.metrics.RecordStage(ctx, stage, duration, err == nil)

	state := StageState{Name: stage, Status: StatusCompleted, Duration: duration, Error: err}
	if err != nil {
		state.Status = StatusFailed
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Float64("stage.duration_seconds", duration.Seconds()))
	result.Stages = append(result.Stages, state)

	return err
}

// traceReport creates a span for a single report
func (rt *runTracer) traceReport(ctx context.Context, report string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "pipeline.report."+report,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("report.name", report)),
	)
}
