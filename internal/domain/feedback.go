package domain

import "time"

// Feedback is a user-authored report about a ride.
type Feedback struct {
	ID        string
	AuthorID  string
	RideID    string
	IssueType string
	Comments  string
	CreatedAt time.Time
}
