// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every knob the checkout service reads at startup.
type Config struct {
	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// DBPath is the SQLite database file. ":memory:" gives an ephemeral DB.
	DBPath string `envconfig:"DB_PATH" default:"./data/checkout.db"`

	// RedisAddr enables the read-through order cache when non-empty.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// CacheTTL bounds how long a cached order may outlive its row.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// OTelServiceName is the service.name reported on exported spans.
	OTelServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"checkout-service"`

	// OTelEndpoint is the OTLP gRPC collector address. Empty disables tracing.
	OTelEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Environment is recorded as deployment.environment on spans.
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
}

// Load reads the environment into a Config. Variables may also be prefixed
// with CHECKOUT_ to disambiguate in shared environments.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("checkout", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
