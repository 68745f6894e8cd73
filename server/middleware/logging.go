package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/observability"
)

// RequestLogger logs every request with method, route, status and duration
// and records request metrics. The health endpoint is only measured.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if metrics != nil {
			metrics.RecordRequest(c.Request.Context(), c.Request.Method, route, status, duration)
		}
		if isHealthEndpoint(c.Request.URL.Path) {
			return
		}

		fields := logger.Fields(
			"method", c.Request.Method,
			logger.FieldPath, c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDuration, duration.Milliseconds(),
			"client", c.ClientIP(),
			logger.FieldBytes, c.Writer.Size(),
		)
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.Last().Error()
		}
		logByStatus(log.WithContext(c.Request.Context()), fields, status)
	}
}

func isHealthEndpoint(path string) bool {
	return path == "/api/health" || path == "/health"
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}
