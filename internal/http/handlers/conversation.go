package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/http/response"
	"github.com/harryc904/Studio/internal/services"
)

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

type auxRequest struct {
	KnowledgeGraph  *string `json:"knowledge_graph"`
	FuncDescription *string `json:"dify_func_des"`
	KnowledgeID     *string `json:"knowledge_id"`
	ExternalRefID   *string `json:"dify_id"`
	PreviewCode     *string `json:"preview_code"`
}

func (a auxRequest) fields() types.AuxFields {
	return types.AuxFields{
		KnowledgeGraph:  a.KnowledgeGraph,
		FuncDescription: a.FuncDescription,
		KnowledgeID:     a.KnowledgeID,
		ExternalRefID:   a.ExternalRefID,
		PreviewCode:     a.PreviewCode,
	}
}

type createConversationRequest struct {
	UserID           int64      `json:"user_id"`
	SessionID        int64      `json:"session_id" binding:"required"`
	ConversationType *int       `json:"conversation_type" binding:"required"`
	Content          string     `json:"content" binding:"required"`
	ParentID         *uuid.UUID `json:"conversation_parent_id"`
	ConversationID   *uuid.UUID `json:"conversation_id"`
	PRDContent       *string    `json:"prd_content"`
	RestoreVersion   *int       `json:"restore_version"`
	auxRequest
}

// POST /conversations
func (ch *ConversationHandler) Create(c *gin.Context) {
	var req createConversationRequest
	if !bindJSON(c, &req) || !callerIs(c, req.UserID) {
		return
	}
	in := services.CreateConversationInput{
		SessionID:      req.SessionID,
		ParentID:       req.ParentID,
		Type:           types.ConversationType(*req.ConversationType),
		Content:        req.Content,
		Aux:            req.fields(),
		PRDContent:     req.PRDContent,
		RestoreVersion: req.RestoreVersion,
	}
	if req.ConversationID != nil {
		in.ConversationID = *req.ConversationID
	}
	entry, err := ch.conversationService.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, entry)
}

// GET /conversations/:session_id?user_id=&conversation_id=
func (ch *ConversationHandler) Thread(c *gin.Context) {
	sessionID, ok := int64Param(c, "session_id")
	if !ok {
		return
	}
	userID, ok := int64Query(c, "user_id")
	if !ok || !callerIs(c, userID) {
		return
	}
	var start *uuid.UUID
	if raw := c.Query("conversation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid conversation_id"))
			return
		}
		start = &id
	}
	out, err := ch.conversationService.Thread(c.Request.Context(), sessionID, start)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /conversations/:session_id/nodes/:conversation_id
func (ch *ConversationHandler) GetNode(c *gin.Context) {
	sessionID, ok := int64Param(c, "session_id")
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid conversation_id"))
		return
	}
	entry, err := ch.conversationService.GetNode(c.Request.Context(), sessionID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, entry)
}

// PUT /conversations/:conversation_id
func (ch *ConversationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid conversation_id"))
		return
	}
	var req struct {
		UserID         int64      `json:"user_id"`
		SessionID      int64      `json:"session_id" binding:"required"`
		ConversationID *uuid.UUID `json:"conversation_id"`
		PRDContent     *string    `json:"prd_content"`
		RestoreVersion *int       `json:"restore_version"`
		auxRequest
	}
	if !bindJSON(c, &req) || !callerIs(c, req.UserID) {
		return
	}
	if req.ConversationID != nil && *req.ConversationID != id {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("conversation_id in body does not match the path"))
		return
	}
	entry, err := ch.conversationService.Update(c.Request.Context(), services.UpdateConversationInput{
		SessionID:      req.SessionID,
		ConversationID: id,
		Aux:            req.fields(),
		PRDContent:     req.PRDContent,
		RestoreVersion: req.RestoreVersion,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, entry)
}
