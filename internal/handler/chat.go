package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// ChatHandler handles HTTP requests for ride chats.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessageRequest is the HTTP request body for sending a message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse is the HTTP representation of a chat message.
type MessageResponse struct {
	ID       string `json:"id"`
	ChatID   string `json:"chat_id"`
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
	SentAt   string `json:"sent_at,omitempty"`
}

// ChatResponse is the HTTP representation of a chat with its messages.
type ChatResponse struct {
	ID       string            `json:"id"`
	RideID   string            `json:"ride_id"`
	Messages []MessageResponse `json:"messages"`
}

// GetChat handles GET /v1/rides/:id/chat
func (h *ChatHandler) GetChat(c *gin.Context) {
	chat, msgs, err := h.chatService.GetForRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageResponse(m)
	}
	respondJSON(c, http.StatusOK, ChatResponse{ID: chat.ID, RideID: chat.RideID, Messages: out})
}

// ChatSummary is the HTTP representation of a chat in a listing.
type ChatSummary struct {
	ID     string `json:"id"`
	RideID string `json:"ride_id"`
}

// ListChatsResponse is the HTTP response for the chat listing.
type ListChatsResponse struct {
	Chats []ChatSummary `json:"chats"`
}

// ListMine handles GET /v1/chats
func (h *ChatHandler) ListMine(c *gin.Context) {
	chats, err := h.chatService.ListForUser(c.Request.Context(), middleware.UserIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ChatSummary, len(chats))
	for i, chat := range chats {
		out[i] = ChatSummary{ID: chat.ID, RideID: chat.RideID}
	}
	respondJSON(c, http.StatusOK, ListChatsResponse{Chats: out})
}

// SendMessage handles POST /v1/rides/:id/chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), c.Param("id"), middleware.UserIDFrom(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toMessageResponse(msg))
}

func toMessageResponse(m *domain.Message) MessageResponse {
	resp := MessageResponse{
		ID:       m.ID,
		ChatID:   m.ChatID,
		AuthorID: m.AuthorID,
		Content:  m.Content,
	}
	if !m.SentAt.IsZero() {
		resp.SentAt = m.SentAt.Format(time.RFC3339)
	}
	return resp
}
