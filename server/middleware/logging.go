package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/kvbridge/logger"
	"github.com/kbukum/kvbridge/observability"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/livez":  true,
	"/readyz": true,
}

// RequestLogger logs every request with method, path, status and duration
// at a level chosen by status, and tracks in-flight requests on metrics.
// Health check paths are served without logging.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		metrics.RequestStarted(ctx)
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		metrics.RequestFinished(ctx)

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               c.FullPath(),
			logger.FieldStatus:   status,
			logger.FieldDuration: latency.Milliseconds(),
			"client":             c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		logByStatus(log.WithContext(ctx), fields, status)
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
