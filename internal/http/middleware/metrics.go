// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the Prometheus instrumentation for HTTP traffic. The
// collectors here cover the transport; the lead pipeline registers its own
// domain counters (leads_extracted_total and friends) the same way, via
// promauto on the default registry, so /metrics serves both families from one
// handler.
//
// Label discipline: "path" is the registered Gin route pattern
// (e.g. /api/openai-chat), never the raw URL, so cardinality stays bounded;
// "status" is the numeric code as a string, which aggregates cleanly in
// PromQL (sum by (status)).
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	// Status is omitted from the duration labels to keep histogram
	// cardinality down.
	reqDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	reqInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Current number of in-flight HTTP requests.",
	})

	// Responses here are small JSON documents: a chat reply tops out around
	// the input ceiling plus the model's completion, and the optimizer's
	// ranked-fleet payload is the largest at a few tens of KiB.
	respBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_response_size_bytes",
		Help: "Size of HTTP responses in bytes.",
		Buckets: []float64{
			200, 500, 1 << 10, 2 << 10, 5 << 10,
			10 << 10, 25 << 10, 50 << 10, 100 << 10,
		},
	}, []string{"method", "path"})
)

// Metrics returns a Gin middleware that instruments requests with Prometheus:
// a request counter by method/path/status, duration and response-size
// histograms by method/path, and an in-flight gauge. Mount promhttp on
// /metrics to expose them.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqInflight.Inc()
		defer reqInflight.Dec()

		c.Next()

		path := routePath(c)
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		reqTotal.WithLabelValues(method, path, status).Inc()
		reqDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// Size is -1 when nothing was written (204s, hijacked connections).
		if size := c.Writer.Size(); size >= 0 {
			respBytes.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
