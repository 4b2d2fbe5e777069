// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation. Metrics() measures request
// counts, latencies, and in-flight concurrency with bounded label
// cardinality (method, registered route, status). The interceptor feeds the
// faults_total counter, labeled by fault kind, so operators can alert on
// taxonomy shifts (e.g. a spike of internal_error) independently of status
// codes.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/faultgate/faultgate/internal/fault"
)

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// Status is omitted to keep histogram cardinality low.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of currently processing requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// faultsTotal counts faults captured by the interceptor, by kind.
	faultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faults_total",
			Help: "Total number of faults captured by the interceptor.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, faultsTotal)
	// Pre-register every kind so dashboards see zero-valued series instead of
	// absent ones.
	for _, k := range fault.Kinds() {
		faultsTotal.WithLabelValues(k.Code())
	}
}

// recordFault increments faults_total for the captured kind. Called by the
// interceptor, once per captured fault.
func recordFault(kind fault.Kind) {
	faultsTotal.WithLabelValues(kind.Code()).Inc()
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
// The "path" label uses the registered route (c.FullPath()) to avoid
// unbounded cardinality from raw URLs; unmatched requests fall back to the
// raw path, which is acceptable for 404 volume tracking.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
