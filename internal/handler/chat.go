package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotelix/internal/model"
	"hotelix/internal/service"
)

// ChatAPI is the conversation service the handlers drive
type ChatAPI interface {
	StartSession(ctx context.Context, email string) (*model.StartSessionResponse, error)
	SendMessage(ctx context.Context, sessionID, text string) (*model.ChatReply, error)
	Conversation(ctx context.Context, sessionID string) ([]model.Message, error)
	Recommendations(ctx context.Context, sessionID string) ([]model.Recommendation, error)
}

var _ ChatAPI = (*service.ChatService)(nil)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chat   ChatAPI
	logger *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatAPI, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// Register mounts the chat routes on an API group
func (h *ChatHandler) Register(rg *gin.RouterGroup) {
	chat := rg.Group("/chat")
	chat.POST("/sessions", h.StartSession)
	chat.POST("/messages", h.SendMessage)
	chat.GET("/sessions/:id/messages", h.Conversation)
	chat.GET("/sessions/:id/recommendations", h.Recommendations)
}

// StartSession handles POST /api/v1/chat/sessions
func (h *ChatHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	// The body is optional; an empty one starts an anonymous session.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	resp, err := h.chat.StartSession(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, "Failed to start session", err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SendMessage handles POST /api/v1/chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reply, err := h.chat.SendMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.fail(c, "Failed to process message", err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Conversation handles GET /api/v1/chat/sessions/:id/messages
func (h *ChatHandler) Conversation(c *gin.Context) {
	sessionID := c.Param("id")
	messages, err := h.chat.Conversation(c.Request.Context(), sessionID)
	if err != nil {
		h.fail(c, "Failed to load conversation", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": messages})
}

// Recommendations handles GET /api/v1/chat/sessions/:id/recommendations
func (h *ChatHandler) Recommendations(c *gin.Context) {
	sessionID := c.Param("id")
	recs, err := h.chat.Recommendations(c.Request.Context(), sessionID)
	if err != nil {
		h.fail(c, "Failed to load recommendations", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "recommendations": recs})
}

// fail maps service errors onto status codes. Internal errors are logged, not echoed.
func (h *ChatHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		// client went away
		c.Status(499)
	default:
		h.logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
