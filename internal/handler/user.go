package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// UserHandler handles HTTP requests for the authenticated user's own
// account.
type UserHandler struct {
	cascadeService *service.CascadeService
	adminService   *service.AdminService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(cascadeService *service.CascadeService, adminService *service.AdminService) *UserHandler {
	return &UserHandler{
		cascadeService: cascadeService,
		adminService:   adminService,
	}
}

// UserResponse is the HTTP representation of a user account.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DeleteAccount handles DELETE /v1/users/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.cascadeService.DeleteUser(c.Request.Context(), middleware.UserIDFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteUser handles DELETE /v1/admin/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.cascadeService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
