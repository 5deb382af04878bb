package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

const rideColumns = `id, driver_id, origin_lat, origin_lng, destination_lat, destination_lng, requested_time, capacity, fare, status, created_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, driver_id, origin_lat, origin_lng, destination_lat, destination_lng, requested_time, capacity, fare, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.OriginLat,
		ride.OriginLng,
		ride.DestinationLat,
		ride.DestinationLng,
		ride.RequestedTime,
		ride.Capacity,
		ride.Fare,
		ride.Status,
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// GetForUpdate retrieves a ride by ID with a row lock. Competing
// mutations of the same ride block here until the holder's transaction
// ends, which is what serializes concurrent approvals.
func (r *RideRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

func scanRide(row *sql.Row) (*domain.Ride, error) {
	var ride domain.Ride
	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.OriginLat,
		&ride.OriginLng,
		&ride.DestinationLat,
		&ride.DestinationLng,
		&ride.RequestedTime,
		&ride.Capacity,
		&ride.Fare,
		&ride.Status,
		&ride.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// ListOpen retrieves a page of rides that are not completed, newest
// request time first.
func (r *RideRepository) ListOpen(ctx context.Context, offset, limit int) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status <> $1
		ORDER BY requested_time DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.QueryContext(ctx, query, domain.RideStatusCompleted, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

// CountOpen returns the number of rides that are not completed.
func (r *RideRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rides WHERE status <> $1`, domain.RideStatusCompleted).Scan(&count)
	return count, err
}

// ListByDriverForUpdate retrieves all rides owned by a driver, locking
// each row until the enclosing transaction ends.
func (r *RideRepository) ListByDriverForUpdate(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY created_at FOR UPDATE`
	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		var ride domain.Ride
		if err := rows.Scan(
			&ride.ID,
			&ride.DriverID,
			&ride.OriginLat,
			&ride.OriginLng,
			&ride.DestinationLat,
			&ride.DestinationLng,
			&ride.RequestedTime,
			&ride.Capacity,
			&ride.Fare,
			&ride.Status,
			&ride.CreatedAt,
		); err != nil {
			return nil, err
		}
		rides = append(rides, &ride)
	}
	return rides, rows.Err()
}

// UpdateStatus updates the status of a ride.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE rides SET status = $1 WHERE id = $2`, status, id)
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

// Delete removes a ride row.
func (r *RideRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM rides WHERE id = $1`, id)
	return err
}
