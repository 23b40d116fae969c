package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"starter-server/internal/schemas"
	"starter-server/internal/services"
	"starter-server/internal/utils"
)

// Authenticate resolves the bearer credential of the request to a user and stores it
// under UserKey. Requests without a valid credential end with 401.
func Authenticate(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, nil)
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), strings.TrimSpace(bearer))
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
			return
		}

		c.Set(utils.UserKey.String(), user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) *schemas.User {
	return c.MustGet(utils.UserKey.String()).(*schemas.User)
}
