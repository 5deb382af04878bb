package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// NotificationHandler handles HTTP requests for user notifications.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// NotificationResponse is the HTTP representation of a notification.
type NotificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ListNotificationsResponse is one page of notifications.
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
}

// List handles GET /v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	unreadOnly := c.Query("unread") == "true"

	result, err := h.notificationService.List(c.Request.Context(), middleware.UserIDFrom(c), unreadOnly, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]NotificationResponse, len(result.Notifications))
	for i, n := range result.Notifications {
		out[i] = toNotificationResponse(n)
	}
	respondJSON(c, http.StatusOK, ListNotificationsResponse{Notifications: out, Total: result.Total})
}

// MarkRead handles POST /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), middleware.UserIDFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.UserIDFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toNotificationResponse(n *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:      n.ID,
		Message: n.Message,
		Read:    n.Read,
	}
	if !n.CreatedAt.IsZero() {
		resp.CreatedAt = n.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
