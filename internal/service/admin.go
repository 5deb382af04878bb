package service

import (
	"context"

	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// AdminService backs the administrative views: account listings and
// driver verification.
type AdminService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(store repository.Store, logger *zap.Logger) *AdminService {
	return &AdminService{store: store, logger: logger}
}

// UserListResult is one page of user accounts.
type UserListResult struct {
	Users []*domain.User
	Total int
}

// ListUsers returns accounts, optionally restricted to one role.
func (s *AdminService) ListUsers(ctx context.Context, role domain.Role, page, size int) (*UserListResult, error) {
	offset, limit := pageBounds(page, size)
	users, err := s.store.Users().List(ctx, role, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Users().Count(ctx, role)
	if err != nil {
		return nil, err
	}
	return &UserListResult{Users: users, Total: total}, nil
}

// DriverListResult is one page of driver profiles.
type DriverListResult struct {
	Profiles []*domain.DriverProfile
	Total    int
}

// ListDrivers returns driver profiles, optionally restricted to one
// verification status.
func (s *AdminService) ListDrivers(ctx context.Context, status domain.VerificationStatus, page, size int) (*DriverListResult, error) {
	offset, limit := pageBounds(page, size)
	profiles, err := s.store.Roles().ListDriverProfiles(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Roles().CountDriverProfiles(ctx, status)
	if err != nil {
		return nil, err
	}
	return &DriverListResult{Profiles: profiles, Total: total}, nil
}

// SetDriverVerification moves a driver profile to the given
// verification status.
func (s *AdminService) SetDriverVerification(ctx context.Context, driverID string, status domain.VerificationStatus) error {
	if driverID == "" {
		return ErrInvalidUserID
	}
	switch status {
	case domain.VerificationApproved, domain.VerificationRejected, domain.VerificationPending:
	default:
		return ErrInvalidInput
	}

	if err := s.store.Roles().UpdateVerificationStatus(ctx, driverID, status); err != nil {
		return err
	}
	s.logger.Info("driver verification updated",
		zap.String("driver_id", driverID), zap.String("status", string(status)))
	return nil
}
