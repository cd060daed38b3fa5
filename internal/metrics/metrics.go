// Package metrics exposes Prometheus instrumentation for Warden.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	IncidentsTotal   *prometheus.CounterVec
	RatingsTotal     *prometheus.CounterVec
	ValidationsTotal *prometheus.CounterVec
	AlertsTotal      *prometheus.CounterVec
	ScoreComputed    prometheus.Histogram
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "warden",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		IncidentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "incidents_recorded_total",
			Help:      "Behavior incidents recorded by facility and type.",
		}, []string{"facility", "type"}),
		RatingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "ratings_recorded_total",
			Help:      "Ratings recorded by facility.",
		}, []string{"facility"}),
		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "validations_total",
			Help:      "Identity validations by facility and outcome status.",
		}, []string{"facility", "status"}),
		AlertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "alerts_total",
			Help:      "Alerts raised by facility and severity.",
		}, []string{"facility", "severity"}),
		ScoreComputed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warden",
			Name:      "behavior_score",
			Help:      "Distribution of computed behavior scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
