package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware writes one line per request, tagged with a request id
// that is echoed back to the client.
func LoggingMiddleware(l logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if id, ok := ClientID(c); ok {
			fields = append(fields, "client_id", id.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("request rejected", fields...)
		default:
			l.Info("request", fields...)
		}

		for _, ginErr := range c.Errors {
			l.ErrorErr("handler error", ginErr.Err, "request_id", requestID, "route", route)
		}
	}
}
