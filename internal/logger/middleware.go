package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the correlation id of a request.
const RequestIDHeader = echo.HeaderXRequestID

// RequestLogger tags every request with a correlation id, taken from
// X-Request-ID or generated, echoes it in the response and logs one
// line when the handler returns.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = shortuuid.New()
			}
			c.Response().Header().Set(RequestIDHeader, id)

			entry := logrus.WithField("request_id", id)
			c.SetRequest(req.WithContext(ToContext(req.Context(), entry)))

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let Echo render the error so the logged status is final.
				c.Error(err)
			}

			fields := logrus.Fields{
				"method":     req.Method,
				"path":       c.Path(),
				"uri":        req.RequestURI,
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
			}
			if err != nil {
				entry.WithFields(fields).WithError(err).Warn("request failed")
			} else {
				entry.WithFields(fields).Info("request handled")
			}
			return nil
		}
	}
}
