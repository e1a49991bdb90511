package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/healthcheck/observe/exporters"
)

// Observer hands out the tracer, meter and logger a Middleware is built
// from. It is safe for concurrent use.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Logger() Logger

	// Shutdown flushes and stops the SDK providers that NewObserver
	// started. Disabled subsystems have nothing to stop.
	Shutdown(ctx context.Context) error
}

// telemetry is the Observer returned by NewObserver. The sdk providers are
// nil for disabled subsystems.
type telemetry struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewObserver validates cfg and starts the enabled subsystems. Enabled
// providers are also installed as the otel globals.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	t := &telemetry{
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		meter:  metricnoop.NewMeterProvider().Meter("noop"),
		logger: NopLogger(),
	}

	if cfg.Tracing.Enabled {
		if t.tp, err = newTracerProvider(ctx, cfg.Tracing, res); err != nil {
			return nil, err
		}
		otel.SetTracerProvider(t.tp)
		t.tracer = t.tp.Tracer(cfg.ServiceName)
	}

	if cfg.Metrics.Enabled {
		if t.mp, err = newMeterProvider(ctx, cfg.Metrics, res); err != nil {
			// Do not leak a tracer provider that was already started.
			_ = t.Shutdown(ctx)
			return nil, err
		}
		otel.SetMeterProvider(t.mp)
		t.meter = t.mp.Meter(cfg.ServiceName)
	}

	if cfg.Logging.Enabled {
		t.logger = NewLogger(cfg.Logging.Level)
	}
	return t, nil
}

func newTracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, fmt.Errorf("observe: tracing: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplePct)),
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// sampler maps a sample ratio to an sdk sampler, sampling everything at 1
// and nothing at 0.
func sampler(pct float64) sdktrace.Sampler {
	if pct >= MaxSamplePct {
		return sdktrace.AlwaysSample()
	}
	if pct <= MinSamplePct {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(pct)
}

func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Exporter)
	if err != nil {
		return nil, fmt.Errorf("observe: metrics: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func (t *telemetry) Tracer() trace.Tracer { return t.tracer }
func (t *telemetry) Meter() metric.Meter  { return t.meter }
func (t *telemetry) Logger() Logger       { return t.logger }

func (t *telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observe: tracer provider: %w", err))
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observe: meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
