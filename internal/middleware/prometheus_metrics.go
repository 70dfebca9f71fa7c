package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connectly/backend/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		method := c.Request.Method
		// Use the route template so path cardinality stays bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(startTime).Seconds())
	}
}
