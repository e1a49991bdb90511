package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records check execution metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one check invocation. A non-nil err means the
	// check output was rejected during normalization.
	RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, status string, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	invalidCount metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates the check instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"health.check.total",
		metric.WithDescription("Total number of health check invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	invalidCount, err := meter.Int64Counter(
		"health.check.invalid",
		metric.WithDescription("Health check outputs dropped during normalization"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"health.check.duration_ms",
		metric.WithDescription("Health check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		invalidCount: invalidCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, status string, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("check.id", meta.CheckID()),
		attribute.String("check.name", meta.Name),
	}
	opt := metric.WithAttributes(attrs...)

	if err != nil {
		m.invalidCount.Add(ctx, 1, opt)
	} else {
		opt = metric.WithAttributes(append(attrs, attribute.String("check.status", status))...)
	}

	m.totalCount.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordCheck(context.Context, CheckMeta, time.Duration, string, error) {}
