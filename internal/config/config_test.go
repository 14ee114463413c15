package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipkit/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.shipkit.io/v2", cfg.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 8080, cfg.WebhookPort)
	assert.Equal(t, 72*time.Hour, cfg.RedisEventTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SHIPKIT_API_KEY", "EZTK123")
	t.Setenv("SHIPKIT_TIMEOUT", "5s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "EZTK123", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Attributes()[3].Value.AsBool())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SHIPKIT_TIMEOUT", "soon")

	_, err := config.Load()
	assert.ErrorContains(t, err, "loading config")
}
