package tests

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/service"
)

func TestDonate_ChargesAndRecords(t *testing.T) {
	t.Parallel()

	f := newFixture()
	donor := f.seedPassenger()
	driver := f.seedDriver()
	donations := service.NewDonationService(f.store, f.sink, zap.NewNop())

	d, err := donations.Donate(context.Background(), donor.ID, driver.ID, 25, domain.PaymentMethodStripe, "fuel money")
	if err != nil {
		t.Fatalf("donate failed: %v", err)
	}
	if d.TransactionID == "" {
		t.Error("expected a gateway transaction id")
	}

	result, err := donations.Received(context.Background(), driver.ID, 1, 20)
	if err != nil {
		t.Fatalf("received failed: %v", err)
	}
	if result.Total != 1 || len(result.Donations) != 1 {
		t.Errorf("received = %d/%d, want 1/1", len(result.Donations), result.Total)
	}

	if events := f.sink.EventsFor(driver.ID); len(events) != 1 || events[0].Kind != service.EventDonationReceived {
		t.Errorf("driver events = %+v, want one DONATION_RECEIVED", events)
	}
}

func TestDonate_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	donor := f.seedPassenger()
	driver := f.seedDriver()
	donations := service.NewDonationService(f.store, f.sink, zap.NewNop())

	if _, err := donations.Donate(context.Background(), donor.ID, driver.ID, 0, domain.PaymentMethodStripe, ""); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got: %v", err)
	}
	if _, err := donations.Donate(context.Background(), donor.ID, driver.ID, 5, domain.PaymentMethod("CASH"), ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("unknown method: expected ErrInvalidInput, got: %v", err)
	}
	if _, err := donations.Donate(context.Background(), donor.ID, "missing", 5, domain.PaymentMethodPayPal, ""); err == nil {
		t.Error("unknown recipient: expected an error")
	}

	// Nothing was recorded for any failed attempt.
	result, _ := donations.Received(context.Background(), driver.ID, 1, 20)
	if result.Total != 0 {
		t.Errorf("donation count = %d after failures, want 0", result.Total)
	}
}

func TestSent_ListsDonorDonationsOnly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	donor := f.seedPassenger()
	otherDonor := f.seedPassenger()
	driver := f.seedDriver()
	donations := service.NewDonationService(f.store, f.sink, zap.NewNop())

	if _, err := donations.Donate(context.Background(), donor.ID, driver.ID, 25, domain.PaymentMethodStripe, "fuel money"); err != nil {
		t.Fatalf("donate failed: %v", err)
	}
	if _, err := donations.Donate(context.Background(), otherDonor.ID, driver.ID, 10, domain.PaymentMethodPayPal, ""); err != nil {
		t.Fatalf("donate failed: %v", err)
	}

	result, err := donations.Sent(context.Background(), donor.ID, 1, 20)
	if err != nil {
		t.Fatalf("sent failed: %v", err)
	}
	if result.Total != 1 || len(result.Donations) != 1 {
		t.Fatalf("sent = %d/%d, want 1/1", len(result.Donations), result.Total)
	}
	if got := result.Donations[0].DonorID; got != donor.ID {
		t.Errorf("donor = %s, want %s", got, donor.ID)
	}

	if _, err := donations.Sent(context.Background(), "", 1, 20); !errors.Is(err, service.ErrInvalidUserID) {
		t.Errorf("expected ErrInvalidUserID for empty donor, got: %v", err)
	}
}
