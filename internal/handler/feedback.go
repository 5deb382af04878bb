package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// FeedbackHandler handles HTTP requests for ride feedback.
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SubmitFeedbackRequest is the HTTP request body for filing feedback.
type SubmitFeedbackRequest struct {
	RideID    string `json:"ride_id"`
	IssueType string `json:"issue_type"`
	Comments  string `json:"comments,omitempty"`
}

// FeedbackResponse is the HTTP representation of a feedback entry.
type FeedbackResponse struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	RideID    string `json:"ride_id"`
	IssueType string `json:"issue_type"`
	Comments  string `json:"comments,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Submit handles POST /v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	fb, err := h.feedbackService.Submit(c.Request.Context(), middleware.UserIDFrom(c), req.RideID, req.IssueType, req.Comments)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toFeedbackResponse(fb))
}

// ListByRide handles GET /v1/rides/:id/feedback
func (h *FeedbackHandler) ListByRide(c *gin.Context) {
	items, err := h.feedbackService.ListByRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]FeedbackResponse, len(items))
	for i, fb := range items {
		out[i] = toFeedbackResponse(fb)
	}
	respondJSON(c, http.StatusOK, out)
}

func toFeedbackResponse(fb *domain.Feedback) FeedbackResponse {
	resp := FeedbackResponse{
		ID:        fb.ID,
		AuthorID:  fb.AuthorID,
		RideID:    fb.RideID,
		IssueType: fb.IssueType,
		Comments:  fb.Comments,
	}
	if !fb.CreatedAt.IsZero() {
		resp.CreatedAt = fb.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
