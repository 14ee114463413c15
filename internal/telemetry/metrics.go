package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tournevent/shipkit/pkg/shipapi"
)

// Metrics holds all Prometheus metrics for shipctl. It implements
// shipapi.Observer.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	APIErrors       *prometheus.CounterVec
	WebhookEvents   *prometheus.CounterVec
}

var _ shipapi.Observer = (*Metrics)(nil)

// NewMetrics creates metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipkit_api_requests_total",
				Help: "Total number of API requests by method, path, and status code",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shipkit_api_request_duration_seconds",
				Help:    "API request duration in seconds by method and path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipkit_api_errors_total",
				Help: "Total failed API requests by error kind",
			},
			[]string{"kind"},
		),
		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipkit_webhook_events_total",
				Help: "Webhook deliveries by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(method, path string, statusCode int, kind shipapi.ErrorKind, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if statusCode == 0 || statusCode >= 300 {
		m.APIErrors.WithLabelValues(kind.String()).Inc()
	}
}

// RecordWebhook records a webhook delivery outcome.
func (m *Metrics) RecordWebhook(outcome string) {
	m.WebhookEvents.WithLabelValues(outcome).Inc()
}
