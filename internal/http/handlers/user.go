package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/http/response"
	"github.com/harryc904/Studio/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, userPayload(me))
}

// PUT /users/me
// body: any of {"username", "email", "phone_number"}; an empty phone_number clears it.
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Username    *string `json:"username"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phone_number"`
	}
	if !bindJSON(c, &req) {
		return
	}
	me, err := uh.userService.UpdateMe(c.Request.Context(), types.UserPatch{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, userPayload(me))
}

// PUT /users/me/password
func (uh *UserHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := uh.userService.UpdatePassword(c.Request.Context(), req.NewPassword); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusOK, "Password updated successfully")
}
