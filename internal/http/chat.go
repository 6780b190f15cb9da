package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/service"
)

type createChatRequest struct {
	Participants []string `json:"participants"`
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type startChatRequest struct {
	Username string `json:"username" binding:"required"`
}

type chatResponse struct {
	ChatID       int64    `json:"chat_id"`
	Participants []string `json:"participants"`
}

type messageResponse struct {
	ID       int64  `json:"id"`
	ChatID   int64  `json:"chat_id"`
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
	SentAt   string `json:"sent_at"`
}

func chatToResponse(chat *domain.Chat) chatResponse {
	return chatResponse{
		ChatID:       chat.ID,
		Participants: chat.Participants,
	}
}

func chatIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) createChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), currentUserID(c), req.Participants)
	if err != nil {
		if errors.Is(err, service.ErrInvalidParticipant) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, chatToResponse(chat))
}

func (h *Handler) startChatByName(c *gin.Context) {
	var req startChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chats.StartChatByUsername(c.Request.Context(), currentUserID(c), req.Username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, chatToResponse(chat))
}

func (h *Handler) sendMessage(c *gin.Context) {
	id, ok := chatIDParam(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chats.SendMessage(c.Request.Context(), id, currentUserID(c), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "message sent", "message_id": msg.ID})
}

func (h *Handler) listMessages(c *gin.Context) {
	id, ok := chatIDParam(c)
	if !ok {
		return
	}

	messages, err := h.chats.ListMessages(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	resp := make([]messageResponse, len(messages))
	for i, msg := range messages {
		resp[i] = messageResponse{
			ID:       msg.ID,
			ChatID:   msg.ChatID,
			SenderID: msg.SenderID,
			Message:  msg.Body,
			SentAt:   msg.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listChats(c *gin.Context) {
	chats, err := h.chats.ListChats(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]chatResponse, len(chats))
	for i := range chats {
		resp[i] = chatToResponse(&chats[i])
	}
	c.JSON(http.StatusOK, resp)
}
