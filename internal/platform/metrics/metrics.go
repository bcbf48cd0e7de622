package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics shared by every route.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Requests        *prometheus.CounterVec
	RateLimited     *prometheus.CounterVec
}

// New creates and registers the platform metrics on reg. A nil registerer
// uses the Prometheus default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "miniminds_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_http_requests_total",
			Help: "Total number of HTTP requests, labeled by route and status class",
		}, []string{"endpoint", "status"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "miniminds_rate_limited_total",
			Help: "Total number of requests rejected by the per-session rate limiter",
		}, []string{"endpoint"}),
	}
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

func (m *Metrics) IncrementRequests(endpoint, status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) IncrementRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(endpoint).Inc()
}
