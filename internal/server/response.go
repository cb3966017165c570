package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/wildsync/internal/common"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes err with the status and public message of its class.
// Internal details never reach the body.
func RespondError(c *gin.Context, err error) {
	var code string
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	c.AbortWithStatusJSON(common.HTTPStatus(err), ErrorEnvelope{
		Error: APIError{
			Message:   common.PublicMessage(err),
			Code:      code,
			RequestID: common.RequestIDFromContext(c.Request.Context()),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
