package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"learning-resources-backend/internal/logging"
	"learning-resources-backend/internal/metrics"
)

// RequestLogger tags each request with an id, logs its completion and
// records it in metrics
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := logging.WithRequestID(req.Context(), requestID)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			// Route template keeps metric label cardinality bounded
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			duration := time.Since(start)
			metrics.RecordHTTPRequest(req.Method, route, status, duration)

			logging.WithContext(ctx).Info("request completed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Int64("size", c.Response().Size),
				zap.Duration("duration", duration),
			)
			return nil
		}
	}
}
