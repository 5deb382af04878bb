package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/domain"
)

// DonationRepository is a PostgreSQL implementation of
// repository.DonationRepository.
type DonationRepository struct {
	q Querier
}

// NewDonationRepository creates a new PostgreSQL donation repository.
func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{q: db}
}

// Create persists a new donation.
func (r *DonationRepository) Create(ctx context.Context, d *domain.Donation) error {
	query := `
		INSERT INTO donations (id, donor_id, recipient_id, amount, payment_method, description, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var description sql.NullString
	if d.Description != "" {
		description = sql.NullString{String: d.Description, Valid: true}
	}
	_, err := r.q.ExecContext(ctx, query,
		d.ID, d.DonorID, d.RecipientID, d.Amount, d.PaymentMethod, description, d.TransactionID)
	return err
}

// ListByRecipient retrieves a page of donations received by a user,
// newest first.
func (r *DonationRepository) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]*domain.Donation, error) {
	query := `
		SELECT id, donor_id, recipient_id, amount, payment_method, description, transaction_id, created_at
		FROM donations
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.QueryContext(ctx, query, recipientID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []*domain.Donation
	for rows.Next() {
		var d domain.Donation
		var description sql.NullString
		if err := rows.Scan(&d.ID, &d.DonorID, &d.RecipientID, &d.Amount, &d.PaymentMethod, &description, &d.TransactionID, &d.CreatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			d.Description = description.String
		}
		donations = append(donations, &d)
	}
	return donations, rows.Err()
}

// ListByDonor retrieves a page of donations made by a user, newest first.
func (r *DonationRepository) ListByDonor(ctx context.Context, donorID string, offset, limit int) ([]*domain.Donation, error) {
	query := `
		SELECT id, donor_id, recipient_id, amount, payment_method, description, transaction_id, created_at
		FROM donations
		WHERE donor_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.QueryContext(ctx, query, donorID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []*domain.Donation
	for rows.Next() {
		var d domain.Donation
		var description sql.NullString
		if err := rows.Scan(&d.ID, &d.DonorID, &d.RecipientID, &d.Amount, &d.PaymentMethod, &description, &d.TransactionID, &d.CreatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			d.Description = description.String
		}
		donations = append(donations, &d)
	}
	return donations, rows.Err()
}

// CountByDonor returns the number of donations made by a user.
func (r *DonationRepository) CountByDonor(ctx context.Context, donorID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM donations WHERE donor_id = $1`, donorID).Scan(&count)
	return count, err
}

// CountByRecipient returns the number of donations received by a user.
func (r *DonationRepository) CountByRecipient(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM donations WHERE recipient_id = $1`, recipientID).Scan(&count)
	return count, err
}

// DeleteByParticipant removes all donations where the user is either the
// donor or the recipient.
func (r *DonationRepository) DeleteByParticipant(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM donations WHERE donor_id = $1 OR recipient_id = $1`, userID)
	return err
}
