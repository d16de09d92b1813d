// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts requests by route pattern and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "castlist_http_requests_total",
			Help: "HTTP requests processed, partitioned by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "castlist_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, partitioned by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// MaterializationsTotal counts materialize calls by outcome.
	MaterializationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "castlist_materializations_total",
			Help: "Castlist materializations, partitioned by result.",
		},
		[]string{"result"},
	)
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
