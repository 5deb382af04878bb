package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// RideHandler handles HTTP requests for rides and their passenger
// requests.
type RideHandler struct {
	rideService    *service.RideService
	requestService *service.RequestService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, requestService *service.RequestService) *RideHandler {
	return &RideHandler{
		rideService:    rideService,
		requestService: requestService,
	}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	RequestedTime  string  `json:"requested_time,omitempty"` // RFC 3339
	Capacity       int     `json:"capacity"`
	Fare           float64 `json:"fare"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID             string  `json:"id"`
	DriverID       string  `json:"driver_id"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	RequestedTime  string  `json:"requested_time,omitempty"`
	Capacity       int     `json:"capacity"`
	Fare           float64 `json:"fare"`
	Status         string  `json:"status"`
	ApprovedCount  int     `json:"approved_count"`
}

// RequestResponse is the HTTP representation of a passenger request.
type RequestResponse struct {
	RideID      string `json:"ride_id"`
	PassengerID string `json:"passenger_id"`
	Status      string `json:"status"`
}

// ListRidesResponse is one page of open rides.
type ListRidesResponse struct {
	Rides []RideResponse `json:"rides"`
	Total int            `json:"total"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var requestedTime time.Time
	if req.RequestedTime != "" {
		t, err := time.Parse(time.RFC3339, req.RequestedTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "requested_time must be RFC 3339"})
			return
		}
		requestedTime = t
	}

	ride, err := h.rideService.Create(c.Request.Context(), service.CreateRideRequest{
		DriverID:       middleware.UserIDFrom(c),
		OriginLat:      req.OriginLat,
		OriginLng:      req.OriginLng,
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
		RequestedTime:  requestedTime,
		Capacity:       req.Capacity,
		Fare:           req.Fare,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toRideResponse(ride, 0))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, approved, err := h.rideService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride, approved))
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.rideService.ListOpen(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	rides := make([]RideResponse, len(result.Rides))
	for i, ride := range result.Rides {
		rides[i] = toRideResponse(ride, 0)
	}
	respondJSON(c, http.StatusOK, ListRidesResponse{Rides: rides, Total: result.Total})
}

// SubmitRequest handles POST /v1/rides/:id/requests
func (h *RideHandler) SubmitRequest(c *gin.Context) {
	req, err := h.requestService.Submit(c.Request.Context(), c.Param("id"), middleware.UserIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toRequestResponse(req))
}

// ListRequests handles GET /v1/rides/:id/requests
func (h *RideHandler) ListRequests(c *gin.Context) {
	reqs, err := h.requestService.ListByRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]RequestResponse, len(reqs))
	for i, r := range reqs {
		out[i] = toRequestResponse(r)
	}
	respondJSON(c, http.StatusOK, out)
}

// ApproveRequest handles POST /v1/rides/:id/requests/:passengerId/approve
func (h *RideHandler) ApproveRequest(c *gin.Context) {
	h.transition(c, h.requestService.Approve)
}

// RejectRequest handles POST /v1/rides/:id/requests/:passengerId/reject
func (h *RideHandler) RejectRequest(c *gin.Context) {
	h.transition(c, h.requestService.Reject)
}

// CancelRequest handles POST /v1/rides/:id/requests/:passengerId/cancel
func (h *RideHandler) CancelRequest(c *gin.Context) {
	h.transition(c, h.requestService.Cancel)
}

// CompleteRequest handles POST /v1/rides/:id/requests/:passengerId/complete
func (h *RideHandler) CompleteRequest(c *gin.Context) {
	h.transition(c, h.requestService.Complete)
}

func (h *RideHandler) transition(c *gin.Context, fn func(ctx context.Context, rideID, passengerID, actorID string) error) {
	err := fn(c.Request.Context(), c.Param("id"), c.Param("passengerId"), middleware.UserIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toRideResponse(ride *domain.Ride, approved int) RideResponse {
	resp := RideResponse{
		ID:             ride.ID,
		DriverID:       ride.DriverID,
		OriginLat:      ride.OriginLat,
		OriginLng:      ride.OriginLng,
		DestinationLat: ride.DestinationLat,
		DestinationLng: ride.DestinationLng,
		Capacity:       ride.Capacity,
		Fare:           ride.Fare,
		Status:         string(ride.Status),
		ApprovedCount:  approved,
	}
	if !ride.RequestedTime.IsZero() {
		resp.RequestedTime = ride.RequestedTime.Format(time.RFC3339)
	}
	return resp
}

func toRequestResponse(req *domain.PassengerRequest) RequestResponse {
	return RequestResponse{
		RideID:      req.RideID,
		PassengerID: req.PassengerID,
		Status:      string(req.Status),
	}
}
