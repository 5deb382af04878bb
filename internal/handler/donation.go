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

// DonationHandler handles HTTP requests for donations.
type DonationHandler struct {
	donationService *service.DonationService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(donationService *service.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

// DonateRequest is the HTTP request body for making a donation.
type DonateRequest struct {
	RecipientID   string  `json:"recipient_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"` // STRIPE or PAYPAL
	Description   string  `json:"description,omitempty"`
}

// DonationResponse is the HTTP representation of a donation.
type DonationResponse struct {
	ID            string  `json:"id"`
	DonorID       string  `json:"donor_id"`
	RecipientID   string  `json:"recipient_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Description   string  `json:"description,omitempty"`
	TransactionID string  `json:"transaction_id"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// ListDonationsResponse is one page of received donations.
type ListDonationsResponse struct {
	Donations []DonationResponse `json:"donations"`
	Total     int                `json:"total"`
}

// Donate handles POST /v1/donations
func (h *DonationHandler) Donate(c *gin.Context) {
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	donation, err := h.donationService.Donate(
		c.Request.Context(),
		middleware.UserIDFrom(c),
		req.RecipientID,
		req.Amount,
		domain.PaymentMethod(req.PaymentMethod),
		req.Description,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toDonationResponse(donation))
}

// ListReceived handles GET /v1/donations/received
func (h *DonationHandler) ListReceived(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.donationService.Received(c.Request.Context(), middleware.UserIDFrom(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]DonationResponse, len(result.Donations))
	for i, d := range result.Donations {
		out[i] = toDonationResponse(d)
	}
	respondJSON(c, http.StatusOK, ListDonationsResponse{Donations: out, Total: result.Total})
}

// ListSent handles GET /v1/donations/sent
func (h *DonationHandler) ListSent(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.donationService.Sent(c.Request.Context(), middleware.UserIDFrom(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]DonationResponse, len(result.Donations))
	for i, d := range result.Donations {
		out[i] = toDonationResponse(d)
	}
	respondJSON(c, http.StatusOK, ListDonationsResponse{Donations: out, Total: result.Total})
}

func toDonationResponse(d *domain.Donation) DonationResponse {
	resp := DonationResponse{
		ID:            d.ID,
		DonorID:       d.DonorID,
		RecipientID:   d.RecipientID,
		Amount:        d.Amount,
		PaymentMethod: string(d.PaymentMethod),
		Description:   d.Description,
		TransactionID: d.TransactionID,
	}
	if !d.CreatedAt.IsZero() {
		resp.CreatedAt = d.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
