package tests

import (
	"context"
	"errors"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 1. RIDE CREATION
// ──────────────────────────────────────────────

func TestRideCreate_ValidInput(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()

	ride, err := f.rides.Create(context.Background(), service.CreateRideRequest{
		DriverID:       driver.ID,
		OriginLat:      12.9716,
		OriginLng:      77.5946,
		DestinationLat: 12.2958,
		DestinationLng: 76.6394,
		Capacity:       3,
		Fare:           250,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if ride.Status != domain.RideStatusPending {
		t.Errorf("new ride status = %s, want PENDING", ride.Status)
	}

	stored, err := f.store.Rides().GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("ride not persisted: %v", err)
	}
	if stored.Capacity != 3 {
		t.Errorf("stored capacity = %d, want 3", stored.Capacity)
	}
}

func TestRideCreate_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()

	testCases := []struct {
		name    string
		req     service.CreateRideRequest
		wantErr error
	}{
		{
			name:    "zero capacity",
			req:     service.CreateRideRequest{DriverID: driver.ID, OriginLat: 1, OriginLng: 1, DestinationLat: 2, DestinationLng: 2, Capacity: 0},
			wantErr: service.ErrInvalidCapacity,
		},
		{
			name:    "negative capacity",
			req:     service.CreateRideRequest{DriverID: driver.ID, OriginLat: 1, OriginLng: 1, DestinationLat: 2, DestinationLng: 2, Capacity: -1},
			wantErr: service.ErrInvalidCapacity,
		},
		{
			name:    "latitude out of range",
			req:     service.CreateRideRequest{DriverID: driver.ID, OriginLat: 91, OriginLng: 1, DestinationLat: 2, DestinationLng: 2, Capacity: 2},
			wantErr: service.ErrInvalidLocation,
		},
		{
			name:    "longitude out of range",
			req:     service.CreateRideRequest{DriverID: driver.ID, OriginLat: 1, OriginLng: 181, DestinationLat: 2, DestinationLng: 2, Capacity: 2},
			wantErr: service.ErrInvalidLocation,
		},
		{
			name:    "missing driver",
			req:     service.CreateRideRequest{OriginLat: 1, OriginLng: 1, DestinationLat: 2, DestinationLng: 2, Capacity: 2},
			wantErr: service.ErrInvalidUserID,
		},
		{
			name:    "non-driver user",
			req:     service.CreateRideRequest{DriverID: passenger.ID, OriginLat: 1, OriginLng: 1, DestinationLat: 2, DestinationLng: 2, Capacity: 2},
			wantErr: service.ErrUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.rides.Create(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}
}

// ──────────────────────────────────────────────
// 2. COMPLETION RE-EVALUATION
// ──────────────────────────────────────────────

func TestReevaluateCompletion_AllTerminalWithCompleted(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	p1 := f.seedPassenger()
	p2 := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, p1.ID, domain.RequestStatusCompleted)
	f.seedRequest(ride.ID, p2.ID, domain.RequestStatusRejected)

	if err := f.rides.ReevaluateCompletion(context.Background(), ride.ID); err != nil {
		t.Fatalf("reevaluation failed: %v", err)
	}

	got, _ := f.store.Rides().GetByID(context.Background(), ride.ID)
	if got.Status != domain.RideStatusCompleted {
		t.Errorf("ride status = %s, want COMPLETED", got.Status)
	}
}

func TestReevaluateCompletion_PendingRequestBlocks(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	p1 := f.seedPassenger()
	p2 := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, p1.ID, domain.RequestStatusCompleted)
	f.seedRequest(ride.ID, p2.ID, domain.RequestStatusPending)

	if err := f.rides.ReevaluateCompletion(context.Background(), ride.ID); err != nil {
		t.Fatalf("reevaluation failed: %v", err)
	}

	got, _ := f.store.Rides().GetByID(context.Background(), ride.ID)
	if got.Status != domain.RideStatusActive {
		t.Errorf("ride status = %s, want ACTIVE while a request is pending", got.Status)
	}
}

func TestReevaluateCompletion_NoCompletedRequestBlocks(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	p1 := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, p1.ID, domain.RequestStatusCancelled)

	if err := f.rides.ReevaluateCompletion(context.Background(), ride.ID); err != nil {
		t.Fatalf("reevaluation failed: %v", err)
	}

	got, _ := f.store.Rides().GetByID(context.Background(), ride.ID)
	if got.Status != domain.RideStatusActive {
		t.Errorf("ride status = %s, want ACTIVE when no request completed", got.Status)
	}
}

func TestReevaluateCompletion_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	p1 := f.seedPassenger()
	ride := f.seedRide(driver.ID, 1, domain.RideStatusActive)
	f.seedRequest(ride.ID, p1.ID, domain.RequestStatusCompleted)

	for i := 0; i < 2; i++ {
		if err := f.rides.ReevaluateCompletion(context.Background(), ride.ID); err != nil {
			t.Fatalf("reevaluation %d failed: %v", i+1, err)
		}
		got, _ := f.store.Rides().GetByID(context.Background(), ride.ID)
		if got.Status != domain.RideStatusCompleted {
			t.Errorf("run %d: ride status = %s, want COMPLETED", i+1, got.Status)
		}
	}
}

// ──────────────────────────────────────────────
// 3. COMPLETION MONOTONICITY
// ──────────────────────────────────────────────

func TestCompletedRide_StatusNeverChanges(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	late := f.seedPassenger()
	ride := f.seedRide(driver.ID, 1, domain.RideStatusCompleted)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusCompleted)

	// New submissions bounce off a completed ride.
	if _, err := f.requests.Submit(context.Background(), ride.ID, late.ID); err == nil {
		t.Error("expected submission against a completed ride to fail")
	}

	// Reevaluation must not move the status either.
	if err := f.rides.ReevaluateCompletion(context.Background(), ride.ID); err != nil {
		t.Fatalf("reevaluation failed: %v", err)
	}

	got, _ := f.store.Rides().GetByID(context.Background(), ride.ID)
	if got.Status != domain.RideStatusCompleted {
		t.Errorf("ride status = %s, want COMPLETED to be final", got.Status)
	}
}

// ──────────────────────────────────────────────
// 4. FULL LIFECYCLE SCENARIO
// ──────────────────────────────────────────────

// Ride with capacity 1 and two contending passengers: approval fills the
// seat, the loser stays pending until rejected, and the ride completes
// only once every request is terminal with at least one completed.
func TestLifecycle_CapacityOneTwoPassengers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	driver := f.seedDriver()
	p1 := f.seedPassenger()
	p2 := f.seedPassenger()
	ride := f.seedRide(driver.ID, 1, domain.RideStatusPending)

	if _, err := f.requests.Submit(ctx, ride.ID, p1.ID); err != nil {
		t.Fatalf("p1 submit failed: %v", err)
	}
	if _, err := f.requests.Submit(ctx, ride.ID, p2.ID); err != nil {
		t.Fatalf("p2 submit failed: %v", err)
	}

	if err := f.requests.Approve(ctx, ride.ID, p1.ID, driver.ID); err != nil {
		t.Fatalf("p1 approve failed: %v", err)
	}
	got, _ := f.store.Rides().GetByID(ctx, ride.ID)
	if got.Status != domain.RideStatusActive {
		t.Fatalf("ride status = %s, want ACTIVE after first approval", got.Status)
	}

	if err := f.requests.Approve(ctx, ride.ID, p2.ID, driver.ID); !errors.Is(err, service.ErrCapacityExceeded) {
		t.Fatalf("p2 approve: expected ErrCapacityExceeded, got: %v", err)
	}
	req2, _ := f.store.Requests().Get(ctx, ride.ID, p2.ID)
	if req2.Status != domain.RequestStatusPending {
		t.Fatalf("p2 status = %s, want PENDING", req2.Status)
	}

	if err := f.requests.Complete(ctx, ride.ID, p1.ID, p1.ID); err != nil {
		t.Fatalf("p1 complete failed: %v", err)
	}
	got, _ = f.store.Rides().GetByID(ctx, ride.ID)
	if got.Status != domain.RideStatusActive {
		t.Fatalf("ride status = %s, want ACTIVE while p2 is still pending", got.Status)
	}

	if err := f.requests.Reject(ctx, ride.ID, p2.ID, driver.ID); err != nil {
		t.Fatalf("p2 reject failed: %v", err)
	}
	got, _ = f.store.Rides().GetByID(ctx, ride.ID)
	if got.Status != domain.RideStatusCompleted {
		t.Fatalf("ride status = %s, want COMPLETED after all requests terminal", got.Status)
	}
}
