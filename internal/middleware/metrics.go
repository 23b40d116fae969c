package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"starter-server/internal/managers"
)

// Metrics records every request by its route pattern, unmatched paths are grouped.
func Metrics(metrics *managers.MetricsManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
