package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/domain"
)

// FeedbackRepository is a PostgreSQL implementation of
// repository.FeedbackRepository.
type FeedbackRepository struct {
	q Querier
}

// NewFeedbackRepository creates a new PostgreSQL feedback repository.
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{q: db}
}

// Create persists a new feedback entry.
func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	query := `INSERT INTO feedback (id, author_id, ride_id, issue_type, comments) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query, f.ID, f.AuthorID, f.RideID, f.IssueType, f.Comments)
	return err
}

// ListByRide retrieves all feedback for a ride, newest first.
func (r *FeedbackRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Feedback, error) {
	query := `
		SELECT id, author_id, ride_id, issue_type, comments, created_at
		FROM feedback WHERE ride_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.AuthorID, &f.RideID, &f.IssueType, &f.Comments, &f.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &f)
	}
	return entries, rows.Err()
}

// DeleteByRide removes all feedback referencing a ride.
func (r *FeedbackRepository) DeleteByRide(ctx context.Context, rideID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM feedback WHERE ride_id = $1`, rideID)
	return err
}

// DeleteByAuthor removes all feedback authored by a user.
func (r *FeedbackRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM feedback WHERE author_id = $1`, authorID)
	return err
}
