package observe

import (
	"context"
	"time"
)

// ExecuteFunc runs one check and reports its normalized status. A non-nil
// error means the check's output was rejected and contributes no result.
type ExecuteFunc func(ctx context.Context, check CheckMeta) (status string, err error)

// Middleware wraps check execution with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, check CheckMeta) (string, error) {
		ctx, span := m.tracer.StartSpan(ctx, check)
		start := time.Now()

		status, err := fn(ctx, check)

		duration := time.Since(start)
		m.tracer.EndSpan(span, status, err)
		m.metrics.RecordCheck(ctx, check, duration, status, err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		logger := m.logger.WithCheck(check)
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Debug(ctx, "check output rejected", fields...)
		} else {
			fields = append(fields, Field{Key: "status", Value: status})
			logger.Debug(ctx, "check completed", fields...)
		}

		return status, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
