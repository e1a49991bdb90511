package observe

import (
	"fmt"
	"slices"
)

// Config selects the telemetry backends for a health check process. Fields
// map to HEALTH_* environment variables; see ConfigFromEnv.
type Config struct {
	ServiceName string        `env:"SERVICE_NAME"`
	Version     string        `env:"SERVICE_VERSION"`
	Tracing     TracingConfig `envPrefix:"TRACING_"`
	Metrics     MetricsConfig `envPrefix:"METRICS_"`
	Logging     LoggingConfig `envPrefix:"LOGGING_"`
}

// TracingConfig controls check spans. SamplePct is a ratio in [0, 1].
type TracingConfig struct {
	Enabled   bool    `env:"ENABLED"`
	Exporter  string  `env:"EXPORTER" envDefault:"none"`
	SamplePct float64 `env:"SAMPLE_PCT" envDefault:"1.0"`
}

// MetricsConfig controls the check counters and duration histogram.
type MetricsConfig struct {
	Enabled  bool   `env:"ENABLED"`
	Exporter string `env:"EXPORTER" envDefault:"none"`
}

// LoggingConfig controls the per-check debug log.
type LoggingConfig struct {
	Enabled bool   `env:"ENABLED"`
	Level   string `env:"LEVEL" envDefault:"info"`
}

// Validate returns the first problem found. Settings of a disabled
// subsystem are not checked.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	for _, err := range []error{c.Tracing.validate(), c.Metrics.validate(), c.Logging.validate()} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (t TracingConfig) validate() error {
	switch {
	case !t.Enabled:
		return nil
	case !slices.Contains(ValidTracingExporters, t.Exporter):
		return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
	case t.SamplePct < MinSamplePct || t.SamplePct > MaxSamplePct:
		return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, t.SamplePct)
	}
	return nil
}

func (m MetricsConfig) validate() error {
	if m.Enabled && !slices.Contains(ValidMetricsExporters, m.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
	}
	return nil
}

func (l LoggingConfig) validate() error {
	if l.Enabled && !slices.Contains(ValidLogLevels, l.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
	return nil
}
