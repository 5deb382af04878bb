package repository

import (
	"context"

	"carpool/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetForUpdate retrieves a ride by ID, locking the row for the
	// duration of the enclosing transaction. Concurrent mutations of the
	// same ride serialize on this lock.
	GetForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// ListOpen retrieves a page of rides that are not completed, newest
	// request time first.
	ListOpen(ctx context.Context, offset, limit int) ([]*domain.Ride, error)

	// CountOpen returns the number of rides that are not completed.
	CountOpen(ctx context.Context) (int, error)

	// ListByDriverForUpdate retrieves all rides owned by a driver,
	// locking each row for the duration of the enclosing transaction.
	ListByDriverForUpdate(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// UpdateStatus updates the status of a ride.
	UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error

	// Delete removes a ride row.
	Delete(ctx context.Context, id string) error
}
