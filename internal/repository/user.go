package repository

import (
	"context"

	"carpool/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetForUpdate retrieves a user by ID, locking the row for the
	// duration of the enclosing transaction.
	GetForUpdate(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List retrieves a page of users, optionally filtered by role.
	List(ctx context.Context, role domain.Role, offset, limit int) ([]*domain.User, error)

	// Count returns the number of users, optionally filtered by role.
	Count(ctx context.Context, role domain.Role) (int, error)

	// Delete removes a user row.
	Delete(ctx context.Context, id string) error
}

// RoleRepository defines the persistence operations for role assignments
// and per-role profiles.
type RoleRepository interface {
	// AssignRole attaches a role to a user.
	AssignRole(ctx context.Context, assignment *domain.RoleAssignment) error

	// RolesForUser returns all roles held by a user.
	RolesForUser(ctx context.Context, userID string) ([]domain.Role, error)

	// DeleteRolesForUser removes every role assignment for a user.
	DeleteRolesForUser(ctx context.Context, userID string) error

	// CreateDriverProfile adds a driver profile.
	CreateDriverProfile(ctx context.Context, profile *domain.DriverProfile) error

	// GetDriverProfile retrieves the driver profile for a user.
	GetDriverProfile(ctx context.Context, userID string) (*domain.DriverProfile, error)

	// ListDriverProfiles retrieves a page of driver profiles, optionally
	// filtered by verification status.
	ListDriverProfiles(ctx context.Context, status domain.VerificationStatus, offset, limit int) ([]*domain.DriverProfile, error)

	// CountDriverProfiles returns the number of driver profiles,
	// optionally filtered by verification status.
	CountDriverProfiles(ctx context.Context, status domain.VerificationStatus) (int, error)

	// UpdateVerificationStatus updates a driver's verification status.
	UpdateVerificationStatus(ctx context.Context, userID string, status domain.VerificationStatus) error

	// CreateDonorProfile adds a donor profile.
	CreateDonorProfile(ctx context.Context, profile *domain.DonorProfile) error

	// GetDonorProfile retrieves the donor profile for a user.
	GetDonorProfile(ctx context.Context, userID string) (*domain.DonorProfile, error)

	// CreatePassengerProfile adds a passenger profile.
	CreatePassengerProfile(ctx context.Context, profile *domain.PassengerProfile) error

	// DeleteProfilesForUser removes the driver, donor, and passenger
	// profiles for a user, whichever exist.
	DeleteProfilesForUser(ctx context.Context, userID string) error
}
