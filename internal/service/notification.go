package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// Pusher delivers a payload to a connected user. Implemented by the
// websocket hub.
type Pusher interface {
	SendToUser(userID string, payload []byte)
}

// EventPublisher emits an event onto the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// NotificationService persists per-user notifications and fans each one
// out over the websocket hub and the event broker. It is the concrete
// NotificationSink handed to the other services.
type NotificationService struct {
	store     repository.Store
	pusher    Pusher
	publisher EventPublisher
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService. pusher and
// publisher may be nil.
func NewNotificationService(store repository.Store, pusher Pusher, publisher EventPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:     store,
		pusher:    pusher,
		publisher: publisher,
		logger:    logger,
	}
}

var _ NotificationSink = (*NotificationService)(nil)

// Notify stores a notification for the user and pushes it to any live
// connection. Push and broker failures are logged, not returned; only a
// storage failure fails the call.
func (s *NotificationService) Notify(ctx context.Context, userID string, kind EventKind, payload map[string]any) error {
	n := &domain.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Message: renderMessage(kind, payload),
	}
	if err := s.store.Notifications().Create(ctx, n); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"id":      n.ID,
		"user_id": userID,
		"kind":    string(kind),
		"message": n.Message,
		"payload": payload,
	})
	if err != nil {
		return err
	}

	if s.pusher != nil {
		s.pusher.SendToUser(userID, body)
	}
	if s.publisher != nil {
		key := "notification." + strings.ToLower(string(kind))
		if err := s.publisher.Publish(ctx, key, body); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("routing_key", key), zap.Error(err))
		}
	}
	return nil
}

// ListResult is one page of a user's notifications.
type ListResult struct {
	Notifications []*domain.Notification
	Total         int
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, size int) (*ListResult, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	offset, limit := pageBounds(page, size)
	items, err := s.store.Notifications().ListByUser(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Notifications().CountByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	return &ListResult{Notifications: items, Total: total}, nil
}

// MarkRead flags a single notification as read. The user scope prevents
// marking another user's notification.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if id == "" || userID == "" {
		return ErrInvalidInput
	}
	return s.store.Notifications().MarkRead(ctx, id, userID)
}

// MarkAllRead flags every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return s.store.Notifications().MarkAllRead(ctx, userID)
}

func renderMessage(kind EventKind, payload map[string]any) string {
	switch kind {
	case EventRequestSubmitted:
		return "A seat request was submitted."
	case EventRequestApproved:
		return "Your seat request was approved."
	case EventRequestRejected:
		return "Your seat request was rejected."
	case EventRequestCancelled:
		return "A seat request was cancelled."
	case EventRequestCompleted:
		return "A seat request was completed."
	case EventRideCreated:
		return "Your ride was published."
	case EventRideCompleted:
		return "Your ride is complete."
	case EventDonationReceived:
		if amount, ok := payload["amount"].(float64); ok {
			return fmt.Sprintf("You received a donation of %.2f.", amount)
		}
		return "You received a donation."
	case EventChatMessage:
		return "New message in your ride chat."
	default:
		return string(kind)
	}
}
