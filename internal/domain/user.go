package domain

import "time"

// Role names a capability a user holds. A user may hold several roles.
type Role string

const (
	RolePassenger Role = "PASSENGER"
	RoleDonor     Role = "DONOR"
	RoleDriver    Role = "DRIVER"
	RoleAdmin     Role = "ADMIN"
)

// VerificationStatus represents the admin review state of a driver profile.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// User represents an account in the system.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// RoleAssignment attaches a role to a user.
type RoleAssignment struct {
	ID     string
	UserID string
	Role   Role
}

// DriverProfile holds the driver-specific attributes of a user.
type DriverProfile struct {
	UserID             string
	LicenseNumber      string
	CarNumber          string
	CarType            string
	CarColor           string
	VerificationStatus VerificationStatus
}

// DonorProfile marks a user as a donor.
type DonorProfile struct {
	UserID string
}

// PassengerProfile marks a user as a passenger.
type PassengerProfile struct {
	UserID string
}
