package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"starter-server/internal/utils"
)

// InjectTrace assigns every request a trace id, exposes it as X-Trace-Id and
// stores it in the request context so services log with the same id.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), utils.TraceIdKey, traceId))
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
