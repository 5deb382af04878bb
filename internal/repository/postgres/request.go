package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RequestRepository is a PostgreSQL implementation of
// repository.RequestRepository.
type RequestRepository struct {
	q Querier
}

// NewRequestRepository creates a new PostgreSQL request repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{q: db}
}

// Create persists a new request. The (ride_id, passenger_id) primary key
// turns a concurrent double-submit into repository.ErrDuplicate.
func (r *RequestRepository) Create(ctx context.Context, req *domain.PassengerRequest) error {
	query := `
		INSERT INTO passenger_requests (ride_id, passenger_id, status)
		VALUES ($1, $2, $3)
	`
	_, err := r.q.ExecContext(ctx, query, req.RideID, req.PassengerID, req.Status)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// Get retrieves a request by its composite key.
func (r *RequestRepository) Get(ctx context.Context, rideID, passengerID string) (*domain.PassengerRequest, error) {
	query := `
		SELECT ride_id, passenger_id, status, created_at, updated_at
		FROM passenger_requests WHERE ride_id = $1 AND passenger_id = $2
	`
	var req domain.PassengerRequest
	err := r.q.QueryRowContext(ctx, query, rideID, passengerID).Scan(
		&req.RideID, &req.PassengerID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByRide retrieves all requests for a ride.
func (r *RequestRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.PassengerRequest, error) {
	query := `
		SELECT ride_id, passenger_id, status, created_at, updated_at
		FROM passenger_requests WHERE ride_id = $1 ORDER BY created_at
	`
	return r.list(ctx, query, rideID)
}

// ListByPassenger retrieves all requests submitted by a passenger.
func (r *RequestRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.PassengerRequest, error) {
	query := `
		SELECT ride_id, passenger_id, status, created_at, updated_at
		FROM passenger_requests WHERE passenger_id = $1 ORDER BY created_at
	`
	return r.list(ctx, query, passengerID)
}

func (r *RequestRepository) list(ctx context.Context, query string, arg any) ([]*domain.PassengerRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.PassengerRequest
	for rows.Next() {
		var req domain.PassengerRequest
		if err := rows.Scan(&req.RideID, &req.PassengerID, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, &req)
	}
	return reqs, rows.Err()
}

// CountApproved returns the number of approved requests for a ride.
func (r *RequestRepository) CountApproved(ctx context.Context, rideID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM passenger_requests WHERE ride_id = $1 AND status = $2`,
		rideID, domain.RequestStatusApproved).Scan(&count)
	return count, err
}

// UpdateStatus updates the status of a request.
func (r *RequestRepository) UpdateStatus(ctx context.Context, rideID, passengerID string, status domain.RequestStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE passenger_requests SET status = $1, updated_at = now() WHERE ride_id = $2 AND passenger_id = $3`,
		status, rideID, passengerID)
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

// DeleteByRide removes all requests for a ride.
func (r *RequestRepository) DeleteByRide(ctx context.Context, rideID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM passenger_requests WHERE ride_id = $1`, rideID)
	return err
}

// DeleteByPassenger removes all requests submitted by a passenger.
func (r *RequestRepository) DeleteByPassenger(ctx context.Context, passengerID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM passenger_requests WHERE passenger_id = $1`, passengerID)
	return err
}
