// Package metrics exposes Prometheus counters for integrity conflicts and
// HTTP traffic.
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
	integrityConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dialysis",
		Name:      "integrity_conflicts_total",
		Help:      "Unique and foreign-key violations reported by the store.",
	}, []string{"kind", "entity", "field"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dialysis",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	throttled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dialysis",
		Name:      "http_throttled_total",
		Help:      "Requests rejected by the per-client rate limit.",
	}, []string{"route"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dialysis",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveConflict counts one integrity violation translated from the store.
func ObserveConflict(kind, entity, field string) {
	integrityConflicts.WithLabelValues(kind, entity, field).Inc()
}

// ObserveThrottled counts one request rejected by the rate limiter.
func ObserveThrottled(route string) {
	if route == "" {
		route = "unmatched"
	}
	throttled.WithLabelValues(route).Inc()
}

// Middleware records request counts and latency keyed by the matched route,
// not the raw path, to keep label cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
