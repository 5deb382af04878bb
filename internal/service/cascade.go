package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// deletionLockTTL bounds how long an advisory deletion lock can outlive a
// crashed deleter before another attempt may proceed.
const deletionLockTTL = 30 * time.Second

// CascadeService removes a user and everything the user owns or
// participates in - rides driven, requests made, chats and messages,
// donations, feedback, notifications, roles and profiles - as one
// atomic unit. Either the whole graph disappears or none of it does.
type CascadeService struct {
	store  repository.Store
	cache  redis.CacheStoreInterface
	locks  redis.LockStoreInterface
	logger *zap.Logger
}

// NewCascadeService creates a new CascadeService. cache and locks may be nil.
func NewCascadeService(store repository.Store, cache redis.CacheStoreInterface, locks redis.LockStoreInterface, logger *zap.Logger) *CascadeService {
	return &CascadeService{
		store:  store,
		cache:  cache,
		locks:  locks,
		logger: logger,
	}
}

// DeleteUser deletes the user and cascades across the entity graph in a
// single transaction. A best-effort advisory lock rejects overlapping
// deletions of the same user early; correctness does not depend on it
// because the user row itself is locked inside the transaction.
func (s *CascadeService) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	if s.locks != nil {
		ok, err := s.locks.AcquireDeletionLock(ctx, userID, deletionLockTTL)
		if err != nil {
			s.logger.Warn("deletion lock unavailable, proceeding on row lock alone",
				zap.String("user_id", userID), zap.Error(err))
		} else if !ok {
			return ErrDeletionInProgress
		} else {
			defer func() {
				if err := s.locks.ReleaseDeletionLock(context.WithoutCancel(ctx), userID); err != nil {
					s.logger.Warn("deletion lock release failed",
						zap.String("user_id", userID), zap.Error(err))
				}
			}()
		}
	}

	var deletedRides []string
	err := s.store.Within(ctx, func(tx repository.Tx) error {
		// Lock the user row first so concurrent state-machine
		// transitions referencing this user serialize behind us.
		if _, err := tx.Users().GetForUpdate(ctx, userID); err != nil {
			return err
		}

		// Rides driven by the user, locked up front. Each ride takes
		// its dependents with it.
		rides, err := tx.Rides().ListByDriverForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if err := tx.Donations().DeleteByParticipant(ctx, userID); err != nil {
			return err
		}

		for _, ride := range rides {
			if err := s.deleteRideGraph(ctx, tx, ride); err != nil {
				return err
			}
			deletedRides = append(deletedRides, ride.ID)
		}

		// Requests the user made on other drivers' rides.
		if err := tx.Requests().DeleteByPassenger(ctx, userID); err != nil {
			return err
		}
		if err := tx.Feedback().DeleteByAuthor(ctx, userID); err != nil {
			return err
		}
		if err := tx.Messages().DeleteByAuthor(ctx, userID); err != nil {
			return err
		}
		if err := tx.Notifications().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Roles().DeleteProfilesForUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Roles().DeleteRolesForUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		for _, rideID := range deletedRides {
			_ = s.cache.InvalidateRide(ctx, rideID)
		}
	}

	s.logger.Info("user deleted",
		zap.String("user_id", userID), zap.Int("rides_removed", len(deletedRides)))
	return nil
}

// deleteRideGraph removes one ride and its dependents: feedback,
// requests, the chat and its messages, then the ride row itself.
func (s *CascadeService) deleteRideGraph(ctx context.Context, tx repository.Tx, ride *domain.Ride) error {
	if err := tx.Feedback().DeleteByRide(ctx, ride.ID); err != nil {
		return err
	}
	if err := tx.Requests().DeleteByRide(ctx, ride.ID); err != nil {
		return err
	}

	chat, err := tx.Chats().GetByRide(ctx, ride.ID)
	switch {
	case err == nil:
		if err := tx.Messages().DeleteByChat(ctx, chat.ID); err != nil {
			return err
		}
		if err := tx.Chats().Delete(ctx, chat.ID); err != nil {
			return err
		}
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	return tx.Rides().Delete(ctx, ride.ID)
}
