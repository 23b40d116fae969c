package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"starter-server/internal/schemas"
	"starter-server/internal/utils"
)

// ValidateAndSanitize binds the JSON body into a fresh T, trims and sanitises it and
// validates it. Handlers read the result with Payload.
func ValidateAndSanitize[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := new(T)
		if err := c.ShouldBindJSON(payload); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				utils.WriteAndLogError(c, schemas.UploadMaxFileSize, http.StatusBadRequest, err)
				return
			}
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}

		validator := utils.GetValidator()
		if err := validator.SanitizeData(payload); err != nil {
			utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
			return
		}

		details, err := validator.ValidateStruct(payload)
		if err != nil {
			utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
			return
		}
		if details != nil {
			utils.WriteAndLogError(c, schemas.ValidationFailed.WithDetails(details), http.StatusUnprocessableEntity, nil)
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), payload)
		c.Next()
	}
}

// Payload returns the request body stored by ValidateAndSanitize[T].
func Payload[T any](c *gin.Context) *T {
	return c.MustGet(utils.SanitizedPayloadKey.String()).(*T)
}
