package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"starter-server/internal/schemas"
)

// WriteAndLogResponse wraps the response object in the data envelope and writes it with the provided status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	ctx.JSON(statusCode, &schemas.DataDTO{Data: response})
}

// WriteNoContent finishes the request with 204 and no body.
func WriteNoContent(ctx *gin.Context) {
	LogMessageWithFields(ctx, "info", "Returning no content")
	ctx.Status(http.StatusNoContent)
}

// WriteAndLogError sends an error response with the specified status code and error details.
// Server side failures are logged as errors, client errors only at debug level.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	level := "debug"
	if statusCode >= http.StatusInternalServerError {
		level = "error"
	}

	if err != nil {
		LogMessageWithFieldsAndError(c, level, "Error occurred", err)
	}
	LogMessageWithFields(c, level, "Returning "+customErr.Code+" / "+customErr.Message)

	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	c.AbortWithStatusJSON(statusCode, errorDto)
}
