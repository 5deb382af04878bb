package repository

import (
	"context"

	"carpool/internal/domain"
)

// RequestRepository defines the persistence operations for passenger
// requests. Requests are keyed by (ride id, passenger id).
type RequestRepository interface {
	// Create persists a new request. Returns ErrDuplicate when a request
	// already exists for the same ride and passenger.
	Create(ctx context.Context, req *domain.PassengerRequest) error

	// Get retrieves a request by its composite key.
	Get(ctx context.Context, rideID, passengerID string) (*domain.PassengerRequest, error)

	// ListByRide retrieves all requests for a ride.
	ListByRide(ctx context.Context, rideID string) ([]*domain.PassengerRequest, error)

	// ListByPassenger retrieves all requests submitted by a passenger.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.PassengerRequest, error)

	// CountApproved returns the number of approved requests for a ride.
	// Callers enforcing the capacity invariant must hold the ride row
	// lock when calling this.
	CountApproved(ctx context.Context, rideID string) (int, error)

	// UpdateStatus updates the status of a request.
	UpdateStatus(ctx context.Context, rideID, passengerID string, status domain.RequestStatus) error

	// DeleteByRide removes all requests for a ride.
	DeleteByRide(ctx context.Context, rideID string) error

	// DeleteByPassenger removes all requests submitted by a passenger.
	DeleteByPassenger(ctx context.Context, passengerID string) error
}
