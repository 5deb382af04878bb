package domain

import "time"

// Notification is a persisted per-user message.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Read      bool
	CreatedAt time.Time
}
