// Package metrics holds the process-wide Prometheus collectors.
// They are registered on the default registry and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coremap_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coremap_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "route"},
	)

	// ActiveSessions excludes closed sessions
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coremap_sessions_active",
		Help: "Number of open visualization sessions",
	})

	SimulationTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coremap_simulation_ticks_total",
		Help: "Total number of simulation ticks across all sessions",
	})

	// SettleTicks observes how many ticks a layout needed to come to rest
	SettleTicks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coremap_simulation_settle_ticks",
		Help:    "Ticks from start or restart until alpha fell below its threshold",
		Buckets: prometheus.LinearBuckets(50, 50, 10),
	})

	Navigations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coremap_navigations_total",
			Help: "Node clicks that resolved to a route",
		},
		[]string{"route"},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coremap_catalog_reloads_total",
			Help: "Catalog reload attempts by result",
		},
		[]string{"result"},
	)

	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coremap_sse_clients",
		Help: "Number of connected event stream clients",
	})
)
