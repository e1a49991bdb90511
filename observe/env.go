package observe

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every variable read by ConfigFromEnv, e.g.
// HEALTH_SERVICE_NAME or HEALTH_TRACING_EXPORTER.
const EnvPrefix = "HEALTH_"

// ConfigFromEnv reads a Config from the environment and validates it.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, fmt.Errorf("observe: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
