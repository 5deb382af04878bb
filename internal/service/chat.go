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

// ChatService manages the per-ride message room. There is at most one
// chat per ride; it is provisioned when the ride is created.
type ChatService struct {
	store  repository.Store
	sink   NotificationSink
	logger *zap.Logger
}

// NewChatService creates a new ChatService. sink may be nil.
func NewChatService(store repository.Store, sink NotificationSink, logger *zap.Logger) *ChatService {
	return &ChatService{store: store, sink: sink, logger: logger}
}

// ProvisionChat creates the chat for a ride if it does not exist yet.
func (s *ChatService) ProvisionChat(ctx context.Context, rideID string) (string, error) {
	if rideID == "" {
		return "", ErrInvalidRideID
	}
	existing, err := s.store.Chats().GetByRide(ctx, rideID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	chat := &domain.Chat{ID: uuid.NewString(), RideID: rideID}
	if err := s.store.Chats().Create(ctx, chat); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with another provisioner; use theirs.
			if existing, err := s.store.Chats().GetByRide(ctx, rideID); err == nil {
				return existing.ID, nil
			}
		}
		return "", err
	}
	return chat.ID, nil
}

// GetForRide returns the chat for a ride along with its messages.
func (s *ChatService) GetForRide(ctx context.Context, rideID string) (*domain.Chat, []*domain.Message, error) {
	if rideID == "" {
		return nil, nil, ErrInvalidRideID
	}
	chat, err := s.store.Chats().GetByRide(ctx, rideID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.store.Messages().ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, nil, err
	}
	return chat, msgs, nil
}

// ListForUser returns the chats of every ride the user participates in,
// as driver or requesting passenger.
func (s *ChatService) ListForUser(ctx context.Context, userID string) ([]*domain.Chat, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.store.Chats().ListByParticipant(ctx, userID)
}

// SendMessage appends a message to a ride's chat. The author must be the
// driver or hold a request on the ride.
func (s *ChatService) SendMessage(ctx context.Context, rideID, authorID, content string) (*domain.Message, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if authorID == "" {
		return nil, ErrInvalidUserID
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
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

	chatID, err := s.ProvisionChat(ctx, rideID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.store.Messages().Create(ctx, msg); err != nil {
		return nil, err
	}

	s.fanOut(ctx, ride, msg)
	return msg, nil
}

// fanOut announces a new message to every ride participant except the
// author. Delivery is best-effort.
func (s *ChatService) fanOut(ctx context.Context, ride *domain.Ride, msg *domain.Message) {
	if s.sink == nil {
		return
	}
	recipients := make(map[string]struct{})
	if ride.DriverID != msg.AuthorID {
		recipients[ride.DriverID] = struct{}{}
	}
	reqs, err := s.store.Requests().ListByRide(ctx, ride.ID)
	if err != nil {
		s.logger.Warn("chat fan-out participant lookup failed",
			zap.String("ride_id", ride.ID), zap.Error(err))
	} else {
		for _, r := range reqs {
			if r.Status == domain.RequestStatusApproved && r.PassengerID != msg.AuthorID {
				recipients[r.PassengerID] = struct{}{}
			}
		}
	}

	payload := map[string]any{
		"ride_id":   ride.ID,
		"chat_id":   msg.ChatID,
		"author_id": msg.AuthorID,
		"content":   msg.Content,
	}
	for userID := range recipients {
		if err := s.sink.Notify(ctx, userID, EventChatMessage, payload); err != nil {
			s.logger.Warn("chat notification failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
}
