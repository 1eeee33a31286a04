package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Farid841/rara/internal/pkg/errcode"
	"github.com/Farid841/rara/internal/pkg/response"
	"github.com/Farid841/rara/internal/registry"
	"github.com/Farid841/rara/internal/service"
)

type ChatHandler struct {
	registry *registry.Registry
	chats    *service.ChatService
}

func NewChatHandler(reg *registry.Registry, chats *service.ChatService) *ChatHandler {
	return &ChatHandler{registry: reg, chats: chats}
}

type askRequest struct {
	SessionID string `json:"session_id"`
	ModelID   string `json:"model_id"`
	Question  string `json:"question"`
}

// Ask answers one question. A missing session id starts a new session; the
// id is echoed back so the client can continue the conversation.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		response.Error(c, errcode.ErrInvalid, "question is required")
		return
	}
	cfg, err := h.registry.Find(c.Request.Context(), req.ModelID)
	if err != nil {
		handleError(c, err)
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	answer, err := h.chats.Ask(c.Request.Context(), sessionID, cfg, req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"session_id": sessionID,
		"answer":     answer,
		"history":    h.chats.History(sessionID),
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		response.Error(c, errcode.ErrInvalid, "session id is required")
		return
	}
	response.Success(c, gin.H{
		"session_id": sessionID,
		"history":    h.chats.History(sessionID),
	})
}
