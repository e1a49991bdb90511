package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CheckMeta describes one registered health check for telemetry purposes.
type CheckMeta struct {
	ID       string   // Check identifier from its params (optional)
	Name     string   // Method name, or "CODE" for anonymous functions
	Invocant string   // Rendered invocant (empty for plain functions)
	Label    string   // Human-readable label (optional)
	Tags     []string // Effective tags (optional)
}

// CheckID returns the identifier used for span names and attributes.
// If ID is set it wins; otherwise it is built from invocant and name.
func (m CheckMeta) CheckID() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Invocant != "" {
		return m.Invocant + "." + m.Name
	}
	return m.Name
}

// SpanName returns the deterministic span name for this check.
// Format: health.check.<id>
func (m CheckMeta) SpanName() string {
	return "health.check." + m.CheckID()
}

// Tracer wraps OpenTelemetry tracing with check-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one check invocation.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the normalized status and any error.
	EndSpan(span trace.Span, status string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("check.id", meta.CheckID()),
		attribute.String("check.name", meta.Name),
		attribute.Bool("check.invalid", false),
	}
	if meta.Invocant != "" {
		attrs = append(attrs, attribute.String("check.invocant", meta.Invocant))
	}
	if meta.Label != "" {
		attrs = append(attrs, attribute.String("check.label", meta.Label))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("check.tags", meta.Tags))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, status string, err error) {
	if status != "" {
		span.SetAttributes(attribute.String("check.status", status))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("check.invalid", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ string, _ error) {
	span.End()
}
