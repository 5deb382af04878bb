package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// RideService owns ride creation and the ride's own status transitions
// (pending -> active -> completed). The active and completed transitions
// are derived from the aggregate state of the ride's passenger requests.
type RideService struct {
	store       repository.Store
	cache       redis.CacheStoreInterface
	provisioner ChatProvisioner
	sink        NotificationSink
	logger      *zap.Logger
}

// NewRideService creates a new RideService. cache, provisioner, and sink
// may be nil.
func NewRideService(
	store repository.Store,
	cache redis.CacheStoreInterface,
	provisioner ChatProvisioner,
	sink NotificationSink,
	logger *zap.Logger,
) *RideService {
	return &RideService{
		store:       store,
		cache:       cache,
		provisioner: provisioner,
		sink:        sink,
		logger:      logger,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	DriverID       string
	OriginLat      float64
	OriginLng      float64
	DestinationLat float64
	DestinationLng float64
	RequestedTime  time.Time
	Capacity       int
	Fare           float64
}

// Create creates a new ride owned by the driver. The ride's chat is
// provisioned best-effort after commit; a provisioning failure is logged
// and does not fail the creation.
func (s *RideService) Create(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if !isValidLatitude(req.OriginLat) || !isValidLongitude(req.OriginLng) ||
		!isValidLatitude(req.DestinationLat) || !isValidLongitude(req.DestinationLng) {
		return nil, ErrInvalidLocation
	}

	requestedTime := req.RequestedTime
	if requestedTime.IsZero() {
		requestedTime = time.Now()
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		DriverID:       req.DriverID,
		OriginLat:      req.OriginLat,
		OriginLng:      req.OriginLng,
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
		RequestedTime:  requestedTime,
		Capacity:       req.Capacity,
		Fare:           req.Fare,
		Status:         domain.RideStatusPending,
	}

	err := s.store.Within(ctx, func(tx repository.Tx) error {
		if _, err := tx.Users().GetByID(ctx, req.DriverID); err != nil {
			return err
		}
		// Only users with a driver profile may offer rides.
		if _, err := tx.Roles().GetDriverProfile(ctx, req.DriverID); err != nil {
			if err == repository.ErrNotFound {
				return ErrUnauthorized
			}
			return err
		}
		return tx.Rides().Create(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	if s.provisioner != nil {
		if _, err := s.provisioner.ProvisionChat(ctx, ride.ID); err != nil {
			s.logger.Warn("chat provisioning failed",
				zap.String("ride_id", ride.ID), zap.Error(err))
		}
	}

	if s.sink != nil {
		_ = s.sink.Notify(ctx, ride.DriverID, EventRideCreated, map[string]any{
			"ride_id":  ride.ID,
			"capacity": ride.Capacity,
		})
	}

	return ride, nil
}

// Get retrieves a ride by ID, trying the cache first.
func (s *RideService) Get(ctx context.Context, rideID string) (*domain.Ride, int, error) {
	if rideID == "" {
		return nil, 0, ErrInvalidRideID
	}

	if s.cache != nil {
		if cached, err := s.cache.GetRide(ctx, rideID); err == nil && cached != nil {
			return &domain.Ride{
				ID:       cached.ID,
				DriverID: cached.DriverID,
				Status:   domain.RideStatus(cached.Status),
				Capacity: cached.Capacity,
				Fare:     cached.Fare,
			}, cached.ApprovedCount, nil
		}
	}

	ride, err := s.store.Rides().GetByID(ctx, rideID)
	if err != nil {
		return nil, 0, err
	}
	approved, err := s.store.Requests().CountApproved(ctx, rideID)
	if err != nil {
		return nil, 0, err
	}

	if s.cache != nil {
		_ = s.cache.SetRide(ctx, &redis.CachedRide{
			ID:            ride.ID,
			DriverID:      ride.DriverID,
			Status:        string(ride.Status),
			Capacity:      ride.Capacity,
			ApprovedCount: approved,
			Fare:          ride.Fare,
		})
	}

	return ride, approved, nil
}

// ListOpenResult is a page of open rides.
type ListOpenResult struct {
	Rides []*domain.Ride
	Total int
}

// ListOpen retrieves a page of rides that still accept requests.
// Completed rides are excluded from this view.
func (s *RideService) ListOpen(ctx context.Context, page, size int) (*ListOpenResult, error) {
	offset, limit := pageBounds(page, size)

	total, err := s.store.Rides().CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	rides, err := s.store.Rides().ListOpen(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ListOpenResult{Rides: rides, Total: total}, nil
}

// pageBounds normalizes 1-based page/size into an offset/limit pair.
func pageBounds(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}

// ReevaluateCompletion recomputes whether the ride is finished: every
// request terminal and at least one completed. Idempotent; calling it on
// an already-completed ride is a no-op.
func (s *RideService) ReevaluateCompletion(ctx context.Context, rideID string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}

	var completed bool
	var driverID string

	err := s.store.Within(ctx, func(tx repository.Tx) error {
		ride, err := tx.Rides().GetForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride.Status == domain.RideStatusCompleted {
			return nil
		}

		requests, err := tx.Requests().ListByRide(ctx, rideID)
		if err != nil {
			return err
		}

		anyCompleted := false
		for _, req := range requests {
			if !req.Status.Terminal() {
				return nil
			}
			if req.Status == domain.RequestStatusCompleted {
				anyCompleted = true
			}
		}
		if !anyCompleted {
			return nil
		}

		if err := tx.Rides().UpdateStatus(ctx, rideID, domain.RideStatusCompleted); err != nil {
			return err
		}
		completed = true
		driverID = ride.DriverID
		return nil
	})
	if err != nil {
		return err
	}

	if completed {
		s.invalidate(ctx, rideID)
		s.logger.Info("ride completed", zap.String("ride_id", rideID))
		if s.sink != nil {
			_ = s.sink.Notify(ctx, driverID, EventRideCompleted, map[string]any{
				"ride_id": rideID,
			})
		}
	}
	return nil
}

func (s *RideService) invalidate(ctx context.Context, rideID string) {
	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, rideID)
	}
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
