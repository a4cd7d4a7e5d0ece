package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "record_service"

// Metrics is a prometheus.Collector for HTTP traffic and watch streams. A nil
// *Metrics records and collects nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	subscriptions   *prometheus.GaugeVec
	streamEvents    *prometheus.CounterVec
}

// NewMetrics initializes the collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "The number of HTTP requests served.",
			}, []string{"path", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to serve an HTTP request.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"path", "method"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "errors_total",
				Help:      "The number of failed requests by error code.",
			}, []string{"path", "method", "code"},
		),
		subscriptions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "stream_subscriptions",
				Help:      "The number of live watch subscriptions.",
			}, []string{"stream"},
		),
		streamEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "stream_events_total",
				Help:      "The number of events delivered to watch subscribers.",
			}, []string{"stream"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	if m == nil {
		return
	}
	m.requests.Describe(ch)
	m.requestDuration.Describe(ch)
	m.errors.Describe(ch)
	m.subscriptions.Describe(ch)
	m.streamEvents.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	if m == nil {
		return
	}
	m.requests.Collect(ch)
	m.requestDuration.Collect(ch)
	m.errors.Collect(ch)
	m.subscriptions.Collect(ch)
	m.streamEvents.Collect(ch)
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// SubscriptionOpened is part of the stream.Observer interface.
func (m *Metrics) SubscriptionOpened(stream string) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(stream).Inc()
}

// SubscriptionClosed is part of the stream.Observer interface.
func (m *Metrics) SubscriptionClosed(stream string) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(stream).Dec()
}

// EventEmitted is part of the stream.Observer interface.
func (m *Metrics) EventEmitted(stream string) {
	if m == nil {
		return
	}
	m.streamEvents.WithLabelValues(stream).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
