package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/http/response"
	"github.com/harryc904/Studio/internal/services"
)

type AuthHandler struct {
	authService  services.AuthService
	verification services.VerificationService
}

func NewAuthHandler(authService services.AuthService, verification services.VerificationService) *AuthHandler {
	return &AuthHandler{authService: authService, verification: verification}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type registerResponse struct {
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	tokenResponse
}

func (ah *AuthHandler) token(accessToken string) tokenResponse {
	return tokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(ah.authService.GetAccessTTL().Seconds()),
	}
}

// POST /auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username         string `json:"username"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		PhoneNumber      string `json:"phone_number"`
		VerificationCode string `json:"verification_code"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, accessToken, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		PhoneNumber:      req.PhoneNumber,
		VerificationCode: req.VerificationCode,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, registerResponse{
		UserID:        u.ID,
		Username:      u.Username,
		Email:         u.Email,
		PhoneNumber:   u.PhoneNumber,
		tokenResponse: ah.token(accessToken),
	})
}

// POST /auth/login
// body: {"username", "password"} or {"phone_number", "verification_code"}
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username         string `json:"username"`
		Password         string `json:"password"`
		PhoneNumber      string `json:"phone_number"`
		VerificationCode string `json:"verification_code"`
	}
	if !bindJSON(c, &req) {
		return
	}
	var (
		accessToken string
		err         error
	)
	switch {
	case req.Username != "" && req.Password != "":
		_, accessToken, err = ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	case req.PhoneNumber != "" && req.VerificationCode != "":
		_, accessToken, err = ah.authService.LoginWithCode(c.Request.Context(), req.PhoneNumber, req.VerificationCode)
	default:
		response.RespondMessage(c, http.StatusBadRequest, "invalid login data provided")
		return
	}
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, ah.token(accessToken))
}

// POST /auth/code
func (ah *AuthHandler) RequestCode(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		Purpose     *int   `json:"purpose" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ah.verification.Issue(c.Request.Context(), req.PhoneNumber, services.CodePurpose(*req.Purpose)); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusOK, "verification code sent")
}

// POST /auth/code/login
func (ah *AuthHandler) LoginWithCode(c *gin.Context) {
	var req struct {
		PhoneNumber      string `json:"phone_number"`
		VerificationCode string `json:"verification_code"`
	}
	if !bindJSON(c, &req) {
		return
	}
	_, accessToken, err := ah.authService.LoginWithCode(c.Request.Context(), req.PhoneNumber, req.VerificationCode)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, ah.token(accessToken))
}

// POST /auth/logout
// Tokens are stateless, so this only acknowledges the client dropping its token.
func (ah *AuthHandler) Logout(c *gin.Context) {
	response.RespondOK(c, gin.H{"msg": "User logged out successfully"})
}

func userPayload(u *types.User) gin.H {
	return gin.H{
		"user_id":      u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"phone_number": u.PhoneNumber,
	}
}
