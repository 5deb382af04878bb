package repository

import (
	"context"

	"carpool/internal/domain"
)

// ChatRepository defines the persistence operations for chats.
type ChatRepository interface {
	// Create persists a new chat. Returns ErrDuplicate when the ride
	// already has a chat.
	Create(ctx context.Context, chat *domain.Chat) error

	// GetByID retrieves a chat by ID.
	GetByID(ctx context.Context, id string) (*domain.Chat, error)

	// GetByRide retrieves the chat attached to a ride.
	GetByRide(ctx context.Context, rideID string) (*domain.Chat, error)

	// ListByParticipant retrieves the chats of every ride the user
	// drives or holds a request on.
	ListByParticipant(ctx context.Context, userID string) ([]*domain.Chat, error)

	// Delete removes a chat row.
	Delete(ctx context.Context, id string) error
}

// MessageRepository defines the persistence operations for chat messages.
type MessageRepository interface {
	// Create persists a new message.
	Create(ctx context.Context, msg *domain.Message) error

	// ListByChat retrieves all messages in a chat, oldest first.
	ListByChat(ctx context.Context, chatID string) ([]*domain.Message, error)

	// LastByChat retrieves the most recent message in a chat, or
	// ErrNotFound when the chat is empty.
	LastByChat(ctx context.Context, chatID string) (*domain.Message, error)

	// DeleteByChat removes all messages in a chat.
	DeleteByChat(ctx context.Context, chatID string) error

	// DeleteByAuthor removes all messages authored by a user.
	DeleteByAuthor(ctx context.Context, authorID string) error
}
