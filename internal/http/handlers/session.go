package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harryc904/Studio/internal/http/response"
	"github.com/harryc904/Studio/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	prdService     services.PRDService
}

func NewSessionHandler(sessionService services.SessionService, prdService services.PRDService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, prdService: prdService}
}

// POST /sessions
func (sh *SessionHandler) Create(c *gin.Context) {
	var req struct {
		UserID int64  `json:"user_id"`
		Name   string `json:"session_name"`
	}
	if !bindJSON(c, &req) || !callerIs(c, req.UserID) {
		return
	}
	s, err := sh.sessionService.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, s)
}

// GET /sessions
func (sh *SessionHandler) List(c *gin.Context) {
	out, err := sh.sessionService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT /sessions/name
func (sh *SessionHandler) Rename(c *gin.Context) {
	var req struct {
		SessionID int64  `json:"session_id" binding:"required"`
		Name      string `json:"name"`
		UserID    int64  `json:"user_id"`
	}
	if !bindJSON(c, &req) || !callerIs(c, req.UserID) {
		return
	}
	s, err := sh.sessionService.Rename(c.Request.Context(), req.SessionID, req.Name)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, s)
}

// DELETE /sessions/:session_id
func (sh *SessionHandler) Delete(c *gin.Context) {
	sessionID, ok := int64Param(c, "session_id")
	if !ok {
		return
	}
	res, err := sh.sessionService.Delete(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"session_id":            res.SessionID,
		"deleted_conversations": res.Conversations,
		"deleted_revisions":     res.Revisions,
	})
}

// GET /sessions/:session_id/prd
func (sh *SessionHandler) LatestPRD(c *gin.Context) {
	sessionID, ok := int64Param(c, "session_id")
	if !ok {
		return
	}
	prd, err := sh.prdService.LatestForSession(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, prd)
}

// POST /sessions/:session_id/prd
func (sh *SessionHandler) AppendPRD(c *gin.Context) {
	sessionID, ok := int64Param(c, "session_id")
	if !ok {
		return
	}
	var req struct {
		UserID         int64     `json:"user_id"`
		ConversationID uuid.UUID `json:"conversation_id" binding:"required"`
		PRDContent     string    `json:"prd_content"`
		RestoreVersion *int      `json:"restore_version"`
	}
	if !bindJSON(c, &req) || !callerIs(c, req.UserID) {
		return
	}
	prd, err := sh.prdService.Append(c.Request.Context(), sessionID, req.ConversationID, req.PRDContent, req.RestoreVersion)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, prd)
}

// GET /prd
func (sh *SessionHandler) LatestPRDForUser(c *gin.Context) {
	prd, err := sh.prdService.LatestForUser(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, prd)
}
