package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Additional-Code/planta/observability"

// HTTPMetrics returns an Echo middleware recording request counts and
// latency per route, method and status. It is a pass-through when metrics
// are disabled.
func (m *Manager) HTTPMetrics() echo.MiddlewareFunc {
	passThrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if !m.MetricsEnabled() {
		return passThrough
	}

	meter := m.meterProvider.Meter(instrumentationName)
	requests, err := meter.Int64Counter("http_server_requests",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		m.logger.Warn("http request counter unavailable")
		return passThrough
	}
	latency, err := meter.Float64Histogram("http_server_request_duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		m.logger.Warn("http latency histogram unavailable")
		return passThrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// The error handler has not written the response yet.
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", route),
				attribute.String("status", strconv.Itoa(status)),
			)
			ctx := c.Request().Context()
			requests.Add(ctx, 1, attrs)
			latency.Record(ctx, time.Since(start).Seconds(), attrs)
			return err
		}
	}
}
