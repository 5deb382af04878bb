package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RoleRepository is a PostgreSQL implementation of repository.RoleRepository.
type RoleRepository struct {
	q Querier
}

// NewRoleRepository creates a new PostgreSQL role repository.
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{q: db}
}

// AssignRole attaches a role to a user.
func (r *RoleRepository) AssignRole(ctx context.Context, assignment *domain.RoleAssignment) error {
	query := `INSERT INTO user_roles (id, user_id, role) VALUES ($1, $2, $3)`
	_, err := r.q.ExecContext(ctx, query, assignment.ID, assignment.UserID, assignment.Role)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// RolesForUser returns all roles held by a user.
func (r *RoleRepository) RolesForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	query := `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// DeleteRolesForUser removes every role assignment for a user.
func (r *RoleRepository) DeleteRolesForUser(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	return err
}

// CreateDriverProfile adds a driver profile.
func (r *RoleRepository) CreateDriverProfile(ctx context.Context, profile *domain.DriverProfile) error {
	query := `
		INSERT INTO driver_profiles (user_id, license_number, car_number, car_type, car_color, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		profile.UserID,
		profile.LicenseNumber,
		profile.CarNumber,
		profile.CarType,
		profile.CarColor,
		profile.VerificationStatus,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetDriverProfile retrieves the driver profile for a user.
func (r *RoleRepository) GetDriverProfile(ctx context.Context, userID string) (*domain.DriverProfile, error) {
	query := `
		SELECT user_id, license_number, car_number, car_type, car_color, verification_status
		FROM driver_profiles WHERE user_id = $1
	`
	var p domain.DriverProfile
	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.LicenseNumber, &p.CarNumber, &p.CarType, &p.CarColor, &p.VerificationStatus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListDriverProfiles retrieves a page of driver profiles, optionally
// filtered by verification status.
func (r *RoleRepository) ListDriverProfiles(ctx context.Context, status domain.VerificationStatus, offset, limit int) ([]*domain.DriverProfile, error) {
	query := `
		SELECT user_id, license_number, car_number, car_type, car_color, verification_status
		FROM driver_profiles
		WHERE ($1 = '' OR verification_status = $1)
		ORDER BY user_id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.QueryContext(ctx, query, string(status), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.DriverProfile
	for rows.Next() {
		var p domain.DriverProfile
		if err := rows.Scan(&p.UserID, &p.LicenseNumber, &p.CarNumber, &p.CarType, &p.CarColor, &p.VerificationStatus); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// CountDriverProfiles returns the number of driver profiles, optionally
// filtered by verification status.
func (r *RoleRepository) CountDriverProfiles(ctx context.Context, status domain.VerificationStatus) (int, error) {
	query := `SELECT COUNT(*) FROM driver_profiles WHERE ($1 = '' OR verification_status = $1)`
	var count int
	err := r.q.QueryRowContext(ctx, query, string(status)).Scan(&count)
	return count, err
}

// UpdateVerificationStatus updates a driver's verification status.
func (r *RoleRepository) UpdateVerificationStatus(ctx context.Context, userID string, status domain.VerificationStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE driver_profiles SET verification_status = $1 WHERE user_id = $2`, status, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateDonorProfile adds a donor profile.
func (r *RoleRepository) CreateDonorProfile(ctx context.Context, profile *domain.DonorProfile) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO donor_profiles (user_id) VALUES ($1)`, profile.UserID)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetDonorProfile retrieves the donor profile for a user.
func (r *RoleRepository) GetDonorProfile(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	var p domain.DonorProfile
	err := r.q.QueryRowContext(ctx, `SELECT user_id FROM donor_profiles WHERE user_id = $1`, userID).Scan(&p.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePassengerProfile adds a passenger profile.
func (r *RoleRepository) CreatePassengerProfile(ctx context.Context, profile *domain.PassengerProfile) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO passenger_profiles (user_id) VALUES ($1)`, profile.UserID)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// DeleteProfilesForUser removes the driver, donor, and passenger profiles
// for a user, whichever exist.
func (r *RoleRepository) DeleteProfilesForUser(ctx context.Context, userID string) error {
	for _, query := range []string{
		`DELETE FROM driver_profiles WHERE user_id = $1`,
		`DELETE FROM donor_profiles WHERE user_id = $1`,
		`DELETE FROM passenger_profiles WHERE user_id = $1`,
	} {
		if _, err := r.q.ExecContext(ctx, query, userID); err != nil {
			return err
		}
	}
	return nil
}
