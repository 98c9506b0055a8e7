// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	PagesFetched   prometheus.Counter
	ActionsStored  prometheus.Counter
	FetchErrors    prometheus.Counter
	CursorPosition prometheus.Gauge
	FetchLatency   prometheus.Histogram

	// Reconstruction metrics
	TradesReconstructed prometheus.Counter
	GroupsRejected      *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "eos_swap_lab"
	}

	return &Metrics{
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pages_fetched_total",
			Help:      "Total number of history pages fetched and stored",
		}),
		ActionsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "actions_stored_total",
			Help:      "Total number of raw actions upserted to the ledger store",
		}),
		FetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_errors_total",
			Help:      "Total number of terminal fetch failures",
		}),
		CursorPosition: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cursor_position",
			Help:      "Current persisted feed position for the target account",
		}),
		FetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_latency_seconds",
			Help:      "History page fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		TradesReconstructed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "reconstructed_total",
			Help:      "Total number of swap trades reconstructed from action groups",
		}),
		GroupsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "groups_rejected_total",
			Help:      "Total number of action groups rejected by reason",
		}, []string{"reason"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
