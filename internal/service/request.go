package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RequestService owns the passenger-request state machine. Every mutating
// operation runs inside one transaction that locks the parent ride row,
// re-reads current state, validates the transition against the freshly
// read values, then writes - there is no gap between check and set. Two
// concurrent approvals of the last seat serialize on the ride lock and
// exactly one of them commits.
type RequestService struct {
	store  repository.Store
	rides  *RideService
	sink   NotificationSink
	logger *zap.Logger
}

// NewRequestService creates a new RequestService. sink may be nil.
func NewRequestService(store repository.Store, rides *RideService, sink NotificationSink, logger *zap.Logger) *RequestService {
	return &RequestService{
		store:  store,
		rides:  rides,
		sink:   sink,
		logger: logger,
	}
}

// Submit creates a pending request for (rideID, passengerID). Fails with
// ErrDuplicateRequest when the passenger already holds a request for the
// ride, and with repository.ErrNotFound when the ride does not exist or
// is already completed.
func (s *RequestService) Submit(ctx context.Context, rideID, passengerID string) (*domain.PassengerRequest, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if passengerID == "" {
		return nil, ErrInvalidUserID
	}

	req := &domain.PassengerRequest{
		RideID:      rideID,
		PassengerID: passengerID,
		Status:      domain.RequestStatusPending,
	}

	var driverID string
	err := s.store.Within(ctx, func(tx repository.Tx) error {
		// The ride lock serializes submission against a concurrent
		// cascade deletion of the driver.
		ride, err := tx.Rides().GetForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride.Status == domain.RideStatusCompleted {
			return repository.ErrNotFound
		}
		if _, err := tx.Users().GetByID(ctx, passengerID); err != nil {
			return err
		}
		driverID = ride.DriverID

		if err := tx.Requests().Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateRequest
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, driverID, EventRequestSubmitted, rideID, passengerID)
	s.notify(ctx, passengerID, EventRequestSubmitted, rideID, passengerID)
	return req, nil
}

// Approve transitions a pending request to approved, enforcing the seat
// capacity at the instant of commit. Only the ride's driver may approve.
func (s *RequestService) Approve(ctx context.Context, rideID, passengerID, actingDriverID string) error {
	err := s.transition(ctx, rideID, passengerID, actingDriverID, domain.RequestStatusApproved)
	if err != nil {
		return err
	}
	s.notify(ctx, passengerID, EventRequestApproved, rideID, passengerID)
	return nil
}

// Reject transitions a pending request to rejected. Only the ride's
// driver may reject. The parent ride is re-evaluated afterwards because
// the rejection may have been its last non-terminal request.
func (s *RequestService) Reject(ctx context.Context, rideID, passengerID, actingDriverID string) error {
	if err := s.transition(ctx, rideID, passengerID, actingDriverID, domain.RequestStatusRejected); err != nil {
		return err
	}
	s.notify(ctx, passengerID, EventRequestRejected, rideID, passengerID)
	s.reevaluate(ctx, rideID)
	return nil
}

// Cancel transitions a pending request to cancelled. Only the requesting
// passenger may cancel.
func (s *RequestService) Cancel(ctx context.Context, rideID, passengerID, actingPassengerID string) error {
	if err := s.transition(ctx, rideID, passengerID, actingPassengerID, domain.RequestStatusCancelled); err != nil {
		return err
	}
	s.notify(ctx, passengerID, EventRequestCancelled, rideID, passengerID)
	s.reevaluate(ctx, rideID)
	return nil
}

// Complete transitions an approved request to completed and asks the
// ride lifecycle to re-evaluate the parent ride.
func (s *RequestService) Complete(ctx context.Context, rideID, passengerID, actingPassengerID string) error {
	if err := s.transition(ctx, rideID, passengerID, actingPassengerID, domain.RequestStatusCompleted); err != nil {
		return err
	}
	s.notify(ctx, passengerID, EventRequestCompleted, rideID, passengerID)
	s.reevaluate(ctx, rideID)
	return nil
}

// reevaluate asks the ride lifecycle to recompute the parent ride's
// status. The transition has already committed, so a re-evaluation
// failure is logged rather than surfaced; the next terminal transition
// on the ride repeats the computation.
func (s *RequestService) reevaluate(ctx context.Context, rideID string) {
	if err := s.rides.ReevaluateCompletion(ctx, rideID); err != nil {
		s.logger.Warn("ride re-evaluation failed",
			zap.String("ride_id", rideID), zap.Error(err))
	}
}

// transition performs one atomic state change. The ride row lock is taken
// first; status and approved-count are re-read under it.
func (s *RequestService) transition(ctx context.Context, rideID, passengerID, actorID string, next domain.RequestStatus) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if passengerID == "" || actorID == "" {
		return ErrInvalidUserID
	}

	err := s.store.Within(ctx, func(tx repository.Tx) error {
		ride, err := tx.Rides().GetForUpdate(ctx, rideID)
		if err != nil {
			return err
		}

		switch next {
		case domain.RequestStatusApproved, domain.RequestStatusRejected:
			if ride.DriverID != actorID {
				return ErrUnauthorized
			}
		case domain.RequestStatusCancelled, domain.RequestStatusCompleted:
			if passengerID != actorID {
				return ErrUnauthorized
			}
		}

		req, err := tx.Requests().Get(ctx, rideID, passengerID)
		if err != nil {
			return err
		}
		if !req.Status.CanTransition(next) {
			return ErrInvalidTransition
		}

		if next == domain.RequestStatusApproved {
			approved, err := tx.Requests().CountApproved(ctx, rideID)
			if err != nil {
				return err
			}
			if approved >= ride.Capacity {
				return ErrCapacityExceeded
			}
		}

		if err := tx.Requests().UpdateStatus(ctx, rideID, passengerID, next); err != nil {
			return err
		}

		// First approval activates the ride.
		if next == domain.RequestStatusApproved && ride.Status == domain.RideStatusPending {
			if err := tx.Rides().UpdateStatus(ctx, rideID, domain.RideStatusActive); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.rides.invalidate(ctx, rideID)
	return nil
}

// ListByRide retrieves all requests for a ride.
func (s *RequestService) ListByRide(ctx context.Context, rideID string) ([]*domain.PassengerRequest, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.store.Requests().ListByRide(ctx, rideID)
}

func (s *RequestService) notify(ctx context.Context, userID string, kind EventKind, rideID, passengerID string) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Notify(ctx, userID, kind, map[string]any{
		"ride_id":      rideID,
		"passenger_id": passengerID,
	}); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("user_id", userID), zap.String("kind", string(kind)), zap.Error(err))
	}
}
