package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"starter-server/internal/schemas"
	"starter-server/internal/utils"
)

// MaxBodySize caps the request body at limit bytes. A declared length above the
// limit is rejected right away, a body growing past it fails while binding.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			utils.WriteAndLogError(c, schemas.UploadMaxFileSize, http.StatusBadRequest, nil)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
