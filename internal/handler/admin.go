package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// AdminHandler handles administrative HTTP requests.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsersResponse is one page of user accounts.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// DriverProfileResponse is the HTTP representation of a driver profile.
type DriverProfileResponse struct {
	UserID             string `json:"user_id"`
	LicenseNumber      string `json:"license_number"`
	CarNumber          string `json:"car_number"`
	CarType            string `json:"car_type,omitempty"`
	CarColor           string `json:"car_color,omitempty"`
	VerificationStatus string `json:"verification_status"`
}

// ListDriversResponse is one page of driver profiles.
type ListDriversResponse struct {
	Drivers []DriverProfileResponse `json:"drivers"`
	Total   int                     `json:"total"`
}

// VerifyDriverRequest is the HTTP request body for driver verification.
type VerifyDriverRequest struct {
	Status string `json:"status"` // APPROVED, REJECTED, or PENDING
}

// ListUsers handles GET /v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	role := domain.Role(c.Query("role"))

	result, err := h.adminService.ListUsers(c.Request.Context(), role, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	users := make([]UserResponse, len(result.Users))
	for i, u := range result.Users {
		users[i] = toUserResponse(u)
	}
	respondJSON(c, http.StatusOK, ListUsersResponse{Users: users, Total: result.Total})
}

// ListDrivers handles GET /v1/admin/drivers
func (h *AdminHandler) ListDrivers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	status := domain.VerificationStatus(c.Query("status"))

	result, err := h.adminService.ListDrivers(c.Request.Context(), status, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	drivers := make([]DriverProfileResponse, len(result.Profiles))
	for i, p := range result.Profiles {
		drivers[i] = DriverProfileResponse{
			UserID:             p.UserID,
			LicenseNumber:      p.LicenseNumber,
			CarNumber:          p.CarNumber,
			CarType:            p.CarType,
			CarColor:           p.CarColor,
			VerificationStatus: string(p.VerificationStatus),
		}
	}
	respondJSON(c, http.StatusOK, ListDriversResponse{Drivers: drivers, Total: result.Total})
}

// VerifyDriver handles POST /v1/admin/drivers/:id/verify
func (h *AdminHandler) VerifyDriver(c *gin.Context) {
	var req VerifyDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.adminService.SetDriverVerification(c.Request.Context(), c.Param("id"), domain.VerificationStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
