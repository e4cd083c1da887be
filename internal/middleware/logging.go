package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anshulkhatri/studyscribe/internal/logging"
	"github.com/anshulkhatri/studyscribe/internal/metrics"
)

// Logger middleware logs request details and records request metrics
func Logger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		logger.LogHTTPRequest(c.Request.Method, path, c.ClientIP(), status, duration)
		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), fmt.Sprintf("%d", status), duration.Seconds())
	}
}
