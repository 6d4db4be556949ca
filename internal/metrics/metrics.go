package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// AuthzDecisionCounter counts authorization outcomes by kind.
	AuthzDecisionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by requirement kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// CacheOpsCounter counts cache hits, misses and invalidations.
	CacheOpsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations by type",
		},
		[]string{"operation"},
	)
)

// RecordCacheOp tallies one cache operation ("hit", "miss", "invalidation"
// or "flush").
func RecordCacheOp(operation string) {
	CacheOpsCounter.WithLabelValues(operation).Inc()
}

// RecordAuthzDecision tallies one authorization evaluation.
func RecordAuthzDecision(kind string, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	AuthzDecisionCounter.WithLabelValues(kind, outcome).Inc()
}

// Middleware records request count and duration for every route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			RequestCounter.WithLabelValues(labels...).Inc()
			RequestDurationHistogram.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
