package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// AuthService handles registration, credential checks, and token minting.
type AuthService struct {
	store    repository.Store
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, secret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RegisterRequest carries the fields common to all registrations.
type RegisterRequest struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// DriverDetails carries the extra fields a driver registration requires.
type DriverDetails struct {
	LicenseNumber string
	CarNumber     string
	CarType       string
	CarColor      string
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	User  *domain.User
	Roles []domain.Role
	Token string
}

// RegisterPassenger creates a passenger account.
func (s *AuthService) RegisterPassenger(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	return s.register(ctx, req, domain.RolePassenger, nil)
}

// RegisterDonor creates a donor account.
func (s *AuthService) RegisterDonor(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	return s.register(ctx, req, domain.RoleDonor, nil)
}

// RegisterDriver creates a driver account with an unverified profile.
func (s *AuthService) RegisterDriver(ctx context.Context, req RegisterRequest, details DriverDetails) (*AuthResult, error) {
	if details.LicenseNumber == "" || details.CarNumber == "" {
		return nil, ErrInvalidInput
	}
	return s.register(ctx, req, domain.RoleDriver, &details)
}

func (s *AuthService) register(ctx context.Context, req RegisterRequest, role domain.Role, details *DriverDetails) (*AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	}

	err = s.store.Within(ctx, func(tx repository.Tx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}
		if err := tx.Roles().AssignRole(ctx, &domain.RoleAssignment{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Role:   role,
		}); err != nil {
			return err
		}
		switch role {
		case domain.RolePassenger:
			return tx.Roles().CreatePassengerProfile(ctx, &domain.PassengerProfile{UserID: user.ID})
		case domain.RoleDonor:
			return tx.Roles().CreateDonorProfile(ctx, &domain.DonorProfile{UserID: user.ID})
		case domain.RoleDriver:
			return tx.Roles().CreateDriverProfile(ctx, &domain.DriverProfile{
				UserID:             user.ID,
				LicenseNumber:      details.LicenseNumber,
				CarNumber:          details.CarNumber,
				CarType:            details.CarType,
				CarColor:           details.CarColor,
				VerificationStatus: domain.VerificationPending,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	roles := []domain.Role{role}
	token, err := s.mintToken(user.ID, roles)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID), zap.String("role", string(role)))
	return &AuthResult{User: user, Roles: roles, Token: token}, nil
}

// Login verifies credentials and issues a token carrying the user's roles.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	roles, err := s.store.Roles().RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.mintToken(user.ID, roles)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Roles: roles, Token: token}, nil
}

func (s *AuthService) mintToken(userID string, roles []domain.Role) (string, error) {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"roles": names,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
