package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`

	// Driver registrations only.
	LicenseNumber string `json:"license_number,omitempty"`
	CarNumber     string `json:"car_number,omitempty"`
	CarType       string `json:"car_type,omitempty"`
	CarColor      string `json:"car_color,omitempty"`
}

// LoginRequest is the HTTP request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the HTTP response for registration and login.
type AuthResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	Token string   `json:"token"`
}

// RegisterPassenger handles POST /v1/auth/register/passenger
func (h *AuthHandler) RegisterPassenger(c *gin.Context) {
	h.register(c, func(req RegisterRequest) (*service.AuthResult, error) {
		return h.authService.RegisterPassenger(c.Request.Context(), toRegister(req))
	})
}

// RegisterDonor handles POST /v1/auth/register/donor
func (h *AuthHandler) RegisterDonor(c *gin.Context) {
	h.register(c, func(req RegisterRequest) (*service.AuthResult, error) {
		return h.authService.RegisterDonor(c.Request.Context(), toRegister(req))
	})
}

// RegisterDriver handles POST /v1/auth/register/driver
func (h *AuthHandler) RegisterDriver(c *gin.Context) {
	h.register(c, func(req RegisterRequest) (*service.AuthResult, error) {
		return h.authService.RegisterDriver(c.Request.Context(), toRegister(req), service.DriverDetails{
			LicenseNumber: req.LicenseNumber,
			CarNumber:     req.CarNumber,
			CarType:       req.CarType,
			CarColor:      req.CarColor,
		})
	})
}

func (h *AuthHandler) register(c *gin.Context, fn func(RegisterRequest) (*service.AuthResult, error)) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := fn(req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toAuthResponse(result))
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toAuthResponse(result))
}

func toRegister(req RegisterRequest) service.RegisterRequest {
	return service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	roles := make([]string, len(result.Roles))
	for i, r := range result.Roles {
		roles[i] = string(r)
	}
	return AuthResponse{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
		Roles: roles,
		Token: result.Token,
	}
}
