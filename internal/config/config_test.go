package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("STREAM_PRICE_INTERVAL", "")
	t.Setenv("STREAM_USER_INTERVAL", "")
	t.Setenv("REDIS_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 3*time.Second, cfg.Stream.PriceInterval)
	assert.Equal(t, 2*time.Second, cfg.Stream.UserInterval)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STREAM_PRICE_INTERVAL", "250ms")
	t.Setenv("STREAM_USER_INTERVAL", "1s")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Stream.PriceInterval)
	assert.Equal(t, time.Second, cfg.Stream.UserInterval)
	assert.True(t, cfg.Redis.Enabled)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadIntervals(t *testing.T) {
	t.Setenv("STREAM_PRICE_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STREAM_PRICE_INTERVAL", "-1s")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}
