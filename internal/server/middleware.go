package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/formgate/formgate/internal/metrics"
	"github.com/formgate/formgate/internal/pii"
)

// requestLogger emits one structured entry per request. The client address
// is hashed before it reaches the sink; request bodies are never logged.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()

			level := zerolog.InfoLevel
			if status >= 500 {
				level = zerolog.ErrorLevel
			}
			log.WithLevel(level).
				Str("route", route).
				Str("ip_hash", pii.HashIP(c.RealIP())).
				Str("ua", c.Request().UserAgent()).
				Int("status", status).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("request")
			return err
		}
	}
}
