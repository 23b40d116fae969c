package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"starter-server/internal/schemas"
	"starter-server/internal/utils"
)

// Recovery turns a panic into the 500 error envelope and logs it with the trace id.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, fmt.Errorf("panic: %v", recovered))
	})
}
