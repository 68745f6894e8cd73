package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/diagramkit/errors"
)

// RespondWithError writes err as an error envelope. Non-AppErrors become
// INTERNAL_ERROR. With debug set the cause chain is included.
func RespondWithError(c *gin.Context, err error, debug bool) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	_ = c.Error(err)
	if debug {
		c.JSON(appErr.HTTPStatus, appErr.ToDebugResponse())
		return
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 JSON response.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
