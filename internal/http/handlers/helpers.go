package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harryc904/Studio/internal/http/response"
	"github.com/harryc904/Studio/internal/platform/ctxutil"
)

var errCallerMismatch = errors.New("user_id does not match the authenticated user")

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// callerIs answers 403 when a client-supplied user id names someone other than the
// authenticated caller. Zero means the client did not send one.
func callerIs(c *gin.Context, userID int64) bool {
	if userID != 0 && userID != ctxutil.UserID(c.Request.Context()) {
		response.RespondError(c, http.StatusForbidden, "forbidden", errCallerMismatch)
		return false
	}
	return true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid "+name))
		return 0, false
	}
	return v, true
}

func int64Query(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid "+name))
		return 0, false
	}
	return v, true
}
