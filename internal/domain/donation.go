package domain

import "time"

// PaymentMethod selects the gateway used to charge a donation.
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "STRIPE"
	PaymentMethodPayPal PaymentMethod = "PAYPAL"
)

// Donation is a donor's payment to a recipient user (typically a driver).
type Donation struct {
	ID            string
	DonorID       string
	RecipientID   string
	Amount        float64
	PaymentMethod PaymentMethod
	Description   string
	TransactionID string
	CreatedAt     time.Time
}
