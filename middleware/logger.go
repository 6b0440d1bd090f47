package middleware

import (
	"time"

	"EstateHub/logging"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestLogger puts a request-scoped logger with a request id in the request
// context and logs the start and end of every request.
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			reqLogger := logger.WithFields(logging.Fields{"request_id": requestID})
			httpLogger := reqLogger.WithFields(logging.Fields{
				"http_method": req.Method,
				"http_path":   req.URL.Path,
				"remote_addr": c.RealIP(),
			})
			c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), reqLogger)))

			start := time.Now()
			httpLogger.Debug("request started", nil)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			httpLogger.Info("request finished", logging.Fields{
				"status_code":   c.Response().Status,
				"bytes_written": c.Response().Size,
				"duration_ms":   time.Since(start).Milliseconds(),
			})
			return nil
		}
	}
}
