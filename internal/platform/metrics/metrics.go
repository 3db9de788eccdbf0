// Package metrics holds the Prometheus collectors for the service and the
// helpers that feed them: a store decorator and an HTTP middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperationDurationSeconds times each store call by backend and operation.
	StoreOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "userstore_store_operation_duration_seconds",
			Help:    "Duration of user store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend", "operation"},
	)

	// StoreOperationErrors counts failed store calls by normalized error kind.
	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userstore_store_operation_errors_total",
			Help: "Total number of failed user store operations by error kind",
		},
		[]string{"backend", "operation", "kind"},
	)

	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userstore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds times requests by method and route pattern.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "userstore_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPRequestsInFlight is the number of requests being served.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "userstore_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)
