package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FundingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propvest_funding_transitions_total",
			Help: "Wallet funding state machine transitions",
		},
		[]string{"from", "to"},
	)

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propvest_backend_requests_total",
			Help: "Requests sent to the backend API",
		},
		[]string{"method", "status"},
	)

	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propvest_backend_request_duration_seconds",
			Help:    "Duration of backend API requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"method"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propvest_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propvest_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveBackend records one backend round trip. status is 0 on transport errors.
func ObserveBackend(method string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequests.WithLabelValues(method, label).Inc()
	BackendDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
