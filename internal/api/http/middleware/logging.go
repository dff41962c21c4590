package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/metrics"
)

// Logging logs every HTTP request and records its metrics.
type Logging struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewLogging creates a new Logging middleware. metrics may be nil.
func NewLogging(logger *logger.Logger, metrics *metrics.Metrics) *Logging {
	return &Logging{logger: logger, metrics: metrics}
}

// Handle logs method, route, status and duration after the request is served.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	duration := time.Since(start)
	status := c.Writer.Status()

	// Unmatched routes are collapsed to keep label cardinality bounded.
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	l.metrics.RecordHTTPRequest(c.Request.Method, route, status, duration)

	args := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	}
	switch {
	case status >= 500:
		l.logger.Error("HTTP request failed", args...)
	default:
		l.logger.Info("HTTP request completed", args...)
	}
}
