package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/config"
)

func TestMetricsCountSubscriptions(t *testing.T) {
	m := NewMetrics()
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(m))

	m.SubscriptionOpened("users")
	m.SubscriptionOpened("users")
	m.SubscriptionClosed("users")
	m.EventEmitted("price_updates")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.subscriptions.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.streamEvents.WithLabelValues("price_updates")))
}

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/users/:id", "GET", 404, time.Millisecond)
	m.RecordError("/users/:id", "GET", "NOT_FOUND")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/users/:id", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/users/:id", "GET", "NOT_FOUND")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, 0)
		m.RecordError("/", "GET", "X")
		m.SubscriptionOpened("users")
		m.SubscriptionClosed("users")
		m.EventEmitted("users")

		descs := make(chan *prometheus.Desc, 1)
		m.Describe(descs)
		close(descs)
		metrics := make(chan prometheus.Metric, 1)
		m.Collect(metrics)
		close(metrics)
		assert.Empty(t, descs)
		assert.Empty(t, metrics)
	})
}

func TestLoggerConfigFallsBackToInfo(t *testing.T) {
	cfg := loggerConfig(config.LoggerConfig{Level: "loud"}, config.AppConfig{Env: "production"})
	assert.Equal(t, zap.InfoLevel, cfg.Level.Level())
	assert.False(t, cfg.Development)

	cfg = loggerConfig(config.LoggerConfig{Level: " DEBUG "}, config.AppConfig{Env: "development"})
	assert.Equal(t, zap.DebugLevel, cfg.Level.Level())
	assert.True(t, cfg.Development)
}

func TestLoggerConfigTagsEntriesWithService(t *testing.T) {
	cfg := loggerConfig(config.LoggerConfig{}, config.AppConfig{Name: "record-service", Env: "staging", Version: "1.2.3"})
	assert.Equal(t, map[string]interface{}{
		"service": "record-service",
		"env":     "staging",
		"version": "1.2.3",
	}, cfg.InitialFields)

	logger, err := NewLogger(config.LoggerConfig{Level: "warn"}, config.AppConfig{Name: "record-service"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}
