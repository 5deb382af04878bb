package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// FeedbackService records user reports about rides.
type FeedbackService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(store repository.Store, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{store: store, logger: logger}
}

// Submit files feedback about a ride. The author must be the driver or
// hold a request on the ride.
func (s *FeedbackService) Submit(ctx context.Context, authorID, rideID, issueType, comments string) (*domain.Feedback, error) {
	if authorID == "" {
		return nil, ErrInvalidUserID
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	issueType = strings.TrimSpace(issueType)
	if issueType == "" {
		return nil, ErrInvalidInput
	}

	ride, err := s.store.Rides().GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != authorID {
		if _, err := s.store.Requests().Get(ctx, rideID, authorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUnauthorized
			}
			return nil, err
		}
	}

	fb := &domain.Feedback{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		RideID:    rideID,
		IssueType: issueType,
		Comments:  comments,
	}
	if err := s.store.Feedback().Create(ctx, fb); err != nil {
		return nil, err
	}

	s.logger.Info("feedback submitted",
		zap.String("ride_id", rideID), zap.String("issue_type", issueType))
	return fb, nil
}

// ListByRide returns all feedback filed against a ride.
func (s *FeedbackService) ListByRide(ctx context.Context, rideID string) ([]*domain.Feedback, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.store.Feedback().ListByRide(ctx, rideID)
}
