// Package metrics exposes Prometheus instrumentation for the HTTP
// surface.  Counters and histograms are registered once at init through
// promauto; the middleware records one observation per request.
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
    httpRequestsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "booking_http_requests_total",
            Help: "Total number of HTTP requests handled.",
        },
        []string{"method", "route", "status"},
    )

    httpRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "booking_http_request_duration_seconds",
            Help:    "HTTP request latency in seconds.",
            Buckets: prometheus.DefBuckets,
        },
        []string{"method", "route"},
    )
)

// Middleware records request count and latency labeled by method, route
// pattern and response status.  The route pattern (not the raw path) keeps
// cardinality bounded.
func Middleware() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)

            route := c.Path()
            method := c.Request().Method
            status := c.Response().Status
            if err != nil {
                if he, ok := err.(*echo.HTTPError); ok {
                    status = he.Code
                }
            }
            httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
            httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
            return err
        }
    }
}

// Handler serves the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
    return echo.WrapHandler(promhttp.Handler())
}
