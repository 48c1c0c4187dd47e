package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harryc904/Studio/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError classifies err and writes the matching status and envelope.
func RespondAPIError(c *gin.Context, err error) {
	e := apierr.FromError(err)
	if e == nil {
		e = apierr.New(http.StatusInternalServerError, "internal", nil)
	}
	if e.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, e.Status, e.Code, e)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageResponse{Message: msg})
}
