// Package metrics provides Prometheus metrics for the resources server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resources_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resources_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Provider metrics
	providerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resources_provider_calls_total",
			Help: "Total number of storage provider calls",
		},
		[]string{"operation", "result"},
	)

	providerRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resources_provider_retries_total",
			Help: "Provider calls retried after backpressure or transient failure",
		},
		[]string{"operation"},
	)

	// Traversal metrics
	traversalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resources_traversal_duration_seconds",
			Help:    "Time to walk the hierarchy for one request",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	traversalNodes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resources_traversal_nodes",
			Help:    "Nodes visited per traversal",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"mode"},
	)

	traversalFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resources_traversal_node_failures_total",
			Help: "Subtrees omitted because a provider call failed",
		},
		[]string{"kind"},
	)

	traversalTruncatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resources_traversal_truncated_total",
			Help: "Traversals that returned a truncated result",
		},
		[]string{"reason"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordProviderCall records one provider call and its outcome label.
func RecordProviderCall(operation, result string) {
	if result == "" {
		result = "ok"
	}
	providerCallsTotal.WithLabelValues(operation, result).Inc()
}

// RecordProviderRetry records a retried provider call.
func RecordProviderRetry(operation string) {
	providerRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordTraversal records a finished traversal.
func RecordTraversal(mode string, nodes int, duration time.Duration) {
	traversalDuration.WithLabelValues(mode).Observe(duration.Seconds())
	traversalNodes.WithLabelValues(mode).Observe(float64(nodes))
}

// RecordNodeFailure records an omitted subtree.
func RecordNodeFailure(kind string) {
	traversalFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordTruncation records a truncated traversal.
func RecordTruncation(reason string) {
	traversalTruncatedTotal.WithLabelValues(reason).Inc()
}
