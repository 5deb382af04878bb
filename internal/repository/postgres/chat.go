package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// ChatRepository is a PostgreSQL implementation of repository.ChatRepository.
type ChatRepository struct {
	q Querier
}

// NewChatRepository creates a new PostgreSQL chat repository.
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{q: db}
}

// Create persists a new chat. The unique index on ride_id enforces one
// chat per ride.
func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO chats (id, ride_id) VALUES ($1, $2)`, chat.ID, chat.RideID)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a chat by ID.
func (r *ChatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	return r.scanOne(r.q.QueryRowContext(ctx, `SELECT id, ride_id FROM chats WHERE id = $1`, id))
}

// GetByRide retrieves the chat attached to a ride.
func (r *ChatRepository) GetByRide(ctx context.Context, rideID string) (*domain.Chat, error) {
	return r.scanOne(r.q.QueryRowContext(ctx, `SELECT id, ride_id FROM chats WHERE ride_id = $1`, rideID))
}

// ListByParticipant retrieves the chats of every ride the user drives or
// holds a request on.
func (r *ChatRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.Chat, error) {
	query := `
		SELECT c.id, c.ride_id FROM chats c
		JOIN rides r ON r.id = c.ride_id
		WHERE r.driver_id = $1
		   OR EXISTS (
			SELECT 1 FROM passenger_requests pr
			WHERE pr.ride_id = c.ride_id AND pr.passenger_id = $1
		   )
		ORDER BY c.id`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		var chat domain.Chat
		if err := rows.Scan(&chat.ID, &chat.RideID); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepository) scanOne(row *sql.Row) (*domain.Chat, error) {
	var chat domain.Chat
	err := row.Scan(&chat.ID, &chat.RideID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// Delete removes a chat row.
func (r *ChatRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, id)
	return err
}

// MessageRepository is a PostgreSQL implementation of
// repository.MessageRepository.
type MessageRepository struct {
	q Querier
}

// NewMessageRepository creates a new PostgreSQL message repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{q: db}
}

// Create persists a new message.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `INSERT INTO messages (id, chat_id, author_id, content, sent_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query, msg.ID, msg.ChatID, msg.AuthorID, msg.Content, msg.SentAt)
	return err
}

// ListByChat retrieves all messages in a chat, oldest first.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]*domain.Message, error) {
	query := `SELECT id, chat_id, author_id, content, sent_at FROM messages WHERE chat_id = $1 ORDER BY sent_at`
	rows, err := r.q.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.AuthorID, &msg.Content, &msg.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// LastByChat retrieves the most recent message in a chat.
func (r *MessageRepository) LastByChat(ctx context.Context, chatID string) (*domain.Message, error) {
	query := `SELECT id, chat_id, author_id, content, sent_at FROM messages WHERE chat_id = $1 ORDER BY sent_at DESC LIMIT 1`
	var msg domain.Message
	err := r.q.QueryRowContext(ctx, query, chatID).Scan(&msg.ID, &msg.ChatID, &msg.AuthorID, &msg.Content, &msg.SentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteByChat removes all messages in a chat.
func (r *MessageRepository) DeleteByChat(ctx context.Context, chatID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = $1`, chatID)
	return err
}

// DeleteByAuthor removes all messages authored by a user.
func (r *MessageRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM messages WHERE author_id = $1`, authorID)
	return err
}
