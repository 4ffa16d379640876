// Package handlers implements the gin HTTP handlers for the console API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	"github.com/snowch/vast-sp-console/internal/interfaces/http/middleware"
	"github.com/snowch/vast-sp-console/pkg/errors"
)

// SendSuccess writes data in the standard response envelope.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.SuccessResponse(data, middleware.RequestIDFrom(c)))
}

// SendError classifies err onto its HTTP status and writes the standard
// error envelope.
func SendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := errors.AsAppError(err); ok {
		status = appErr.HTTPStatus()
	}
	c.JSON(status, dto.ErrorResponse(err, middleware.RequestIDFrom(c)))
}

// SendValidationError reports per-field failures with a 400.
func SendValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse(fields, middleware.RequestIDFrom(c)))
}
