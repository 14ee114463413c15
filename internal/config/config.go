package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for shipctl.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// API
	APIKey  string        `envconfig:"SHIPKIT_API_KEY"`
	BaseURL string        `envconfig:"SHIPKIT_BASE_URL" default:"https://api.shipkit.io/v2"`
	Timeout time.Duration `envconfig:"SHIPKIT_TIMEOUT" default:"60s"`

	// Credentials
	KeyringBackend string `envconfig:"KEYRING_BACKEND"`

	// Webhook listener
	WebhookPort   int           `envconfig:"WEBHOOK_PORT" default:"8080"`
	WebhookSecret string        `envconfig:"WEBHOOK_SECRET"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisEventTTL time.Duration `envconfig:"REDIS_EVENT_TTL" default:"72h"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"shipctl"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("shipkit.base_url", c.BaseURL),
		attribute.Bool("webhook.dedup", c.RedisAddr != ""),
	}
}
