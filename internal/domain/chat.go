package domain

import "time"

// Chat is the message room attached to a ride. At most one per ride.
type Chat struct {
	ID     string
	RideID string
}

// Message is a single chat message.
type Message struct {
	ID       string
	ChatID   string
	AuthorID string
	Content  string
	SentAt   time.Time
}
