package repository

import (
	"context"

	"carpool/internal/domain"
)

// DonationRepository defines the persistence operations for donations.
type DonationRepository interface {
	// Create persists a new donation.
	Create(ctx context.Context, d *domain.Donation) error

	// ListByRecipient retrieves a page of donations received by a user,
	// newest first.
	ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]*domain.Donation, error)

	// CountByRecipient returns the number of donations received by a user.
	CountByRecipient(ctx context.Context, recipientID string) (int, error)

	// ListByDonor retrieves a page of donations made by a user, newest
	// first.
	ListByDonor(ctx context.Context, donorID string, offset, limit int) ([]*domain.Donation, error)

	// CountByDonor returns the number of donations made by a user.
	CountByDonor(ctx context.Context, donorID string) (int, error)

	// DeleteByParticipant removes all donations where the user is either
	// the donor or the recipient.
	DeleteByParticipant(ctx context.Context, userID string) error
}

// FeedbackRepository defines the persistence operations for feedback.
type FeedbackRepository interface {
	// Create persists a new feedback entry.
	Create(ctx context.Context, f *domain.Feedback) error

	// ListByRide retrieves all feedback for a ride, newest first.
	ListByRide(ctx context.Context, rideID string) ([]*domain.Feedback, error)

	// DeleteByRide removes all feedback referencing a ride.
	DeleteByRide(ctx context.Context, rideID string) error

	// DeleteByAuthor removes all feedback authored by a user.
	DeleteByAuthor(ctx context.Context, authorID string) error
}
