// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerOperations counts ledger mutations by operation and outcome
	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chitfund",
		Name:      "ledger_operations_total",
		Help:      "Ledger mutations by operation and result.",
	}, []string{"operation", "result"})

	// PersistFailures counts slots that could not be written to storage
	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chitfund",
		Name:      "persist_failures_total",
		Help:      "Failed writes of a collection to the slot store.",
	}, []string{"key"})

	// LoginAttempts counts logins by result (success, pending, invalid)
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chitfund",
		Name:      "login_attempts_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	// HTTPRequests counts served requests by route and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chitfund",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chitfund",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveOperation records one ledger mutation
func ObserveOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	LedgerOperations.WithLabelValues(op, result).Inc()
}

// Middleware records request counts and latency per matched route
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

// Handler serves the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
