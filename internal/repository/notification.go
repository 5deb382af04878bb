package repository

import (
	"context"

	"carpool/internal/domain"
)

// NotificationRepository defines the persistence operations for
// notifications.
type NotificationRepository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *domain.Notification) error

	// ListByUser retrieves a page of notifications for a user, newest
	// first. When unreadOnly is true, read notifications are skipped.
	ListByUser(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]*domain.Notification, error)

	// CountByUser returns the number of notifications for a user.
	CountByUser(ctx context.Context, userID string, unreadOnly bool) (int, error)

	// MarkRead marks a single notification as read.
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead marks every notification for a user as read.
	MarkAllRead(ctx context.Context, userID string) error

	// DeleteByUser removes all notifications addressed to a user.
	DeleteByUser(ctx context.Context, userID string) error
}
