package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/careerbridge-backend/internal/http/response"
	"github.com/yungbote/careerbridge-backend/internal/services"
)

type ConversationHandler struct {
	conversations services.ConversationService
}

func NewConversationHandler(conversations services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// POST /api/conversations
func (h *ConversationHandler) Create(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	// body is optional
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	conv, msgs, err := h.conversations.Create(c.Request.Context(), req.Title)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"conversation": conv, "messages": msgs})
}

// GET /api/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.conversations.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": convs})
}

// GET /api/conversations/:id/messages
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	msgs, err := h.conversations.Messages(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

// POST /api/conversations/:id/messages
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.conversations.PostMessage(c.Request.Context(), id, req.Content)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, res)
}
