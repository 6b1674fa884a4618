package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
)

// unmatchedRoute labels requests no route matched, keeping the path label
// bounded to the registered routes.
const unmatchedRoute = "unmatched"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B..4MiB
		},
		[]string{"method", "path"},
	)

	// outcome is "ok" or the apperr code ("not_found", "forbidden", ...).
	apiOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_operations_total",
			Help: "Total number of API operations by outcome.",
		},
		[]string{"resource", "op", "outcome"},
	)

	photoBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_upload_bytes",
			Help:    "Size of bootcamp photo uploads in bytes.",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 8), // 16KiB..2MiB
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, apiOps, photoBytes)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.From(err).Code
}

// RecordOperation counts one domain operation (bootcamp create, radius
// search, login, ...).
func RecordOperation(resource, op string, err error) {
	apiOps.WithLabelValues(resource, op, outcome(err)).Inc()
}

// ObservePhotoUpload records the size of a received photo and how its
// upload ended.
func ObservePhotoUpload(size int64, err error) {
	photoBytes.WithLabelValues(outcome(err)).Observe(float64(size))
}

// Metrics instruments every request with Prometheus collectors labelled by
// method, route template and status. Serve them with promhttp on /metrics.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		// -1 for status-only responses
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
