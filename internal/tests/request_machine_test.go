package tests

import (
	"context"
	"errors"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 1. REQUEST SUBMISSION
// ──────────────────────────────────────────────

func TestSubmit_CreatesPendingRequest(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusPending)

	req, err := f.requests.Submit(context.Background(), ride.ID, passenger.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if req.Status != domain.RequestStatusPending {
		t.Errorf("expected status PENDING, got %s", req.Status)
	}

	stored, err := f.store.Requests().Get(context.Background(), ride.ID, passenger.ID)
	if err != nil {
		t.Fatalf("request not persisted: %v", err)
	}
	if stored.Status != domain.RequestStatusPending {
		t.Errorf("persisted status = %s, want PENDING", stored.Status)
	}
}

func TestSubmit_DuplicateFails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusPending)

	if _, err := f.requests.Submit(context.Background(), ride.ID, passenger.ID); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	_, err := f.requests.Submit(context.Background(), ride.ID, passenger.ID)
	if !errors.Is(err, service.ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got: %v", err)
	}
}

func TestSubmit_CompletedRideNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusCompleted)

	_, err := f.requests.Submit(context.Background(), ride.ID, passenger.ID)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for completed ride, got: %v", err)
	}
}

func TestSubmit_UnknownRideFails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	passenger := f.seedPassenger()

	_, err := f.requests.Submit(context.Background(), "no-such-ride", passenger.ID)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. APPROVAL
// ──────────────────────────────────────────────

func TestApprove_TransitionsAndActivatesRide(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusPending)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusPending)

	if err := f.requests.Approve(context.Background(), ride.ID, passenger.ID, driver.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	req, _ := f.store.Requests().Get(context.Background(), ride.ID, passenger.ID)
	if req.Status != domain.RequestStatusApproved {
		t.Errorf("request status = %s, want APPROVED", req.Status)
	}

	got, _ := f.store.Rides().GetByID(context.Background(), ride.ID)
	if got.Status != domain.RideStatusActive {
		t.Errorf("ride status = %s, want ACTIVE after first approval", got.Status)
	}
}

func TestApprove_NonOwnerUnauthorized(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	stranger := f.seedPassenger()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusPending)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusPending)

	err := f.requests.Approve(context.Background(), ride.ID, passenger.ID, stranger.ID)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}

	req, _ := f.store.Requests().Get(context.Background(), ride.ID, passenger.ID)
	if req.Status != domain.RequestStatusPending {
		t.Errorf("request status changed to %s on failed approve", req.Status)
	}
}

func TestApprove_AtCapacityFails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	p1 := f.seedPassenger()
	p2 := f.seedPassenger()
	ride := f.seedRide(driver.ID, 1, domain.RideStatusActive)
	f.seedRequest(ride.ID, p1.ID, domain.RequestStatusApproved)
	f.seedRequest(ride.ID, p2.ID, domain.RequestStatusPending)

	err := f.requests.Approve(context.Background(), ride.ID, p2.ID, driver.ID)
	if !errors.Is(err, service.ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got: %v", err)
	}

	req, _ := f.store.Requests().Get(context.Background(), ride.ID, p2.ID)
	if req.Status != domain.RequestStatusPending {
		t.Errorf("request status = %s, want PENDING after rejected approval", req.Status)
	}
}

// ──────────────────────────────────────────────
// 3. STATE-MACHINE CLOSURE
// ──────────────────────────────────────────────

func TestTerminalStates_HaveNoOutgoingTransitions(t *testing.T) {
	t.Parallel()

	terminal := []domain.RequestStatus{
		domain.RequestStatusRejected,
		domain.RequestStatusCancelled,
		domain.RequestStatusCompleted,
	}

	for _, from := range terminal {
		f := newFixture()
		driver := f.seedDriver()
		passenger := f.seedPassenger()
		ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
		f.seedRequest(ride.ID, passenger.ID, from)

		ops := map[string]error{
			"approve":  f.requests.Approve(context.Background(), ride.ID, passenger.ID, driver.ID),
			"reject":   f.requests.Reject(context.Background(), ride.ID, passenger.ID, driver.ID),
			"cancel":   f.requests.Cancel(context.Background(), ride.ID, passenger.ID, passenger.ID),
			"complete": f.requests.Complete(context.Background(), ride.ID, passenger.ID, passenger.ID),
		}
		for op, err := range ops {
			if !errors.Is(err, service.ErrInvalidTransition) {
				t.Errorf("%s on %s request: expected ErrInvalidTransition, got: %v", op, from, err)
			}
		}

		req, _ := f.store.Requests().Get(context.Background(), ride.ID, passenger.ID)
		if req.Status != from {
			t.Errorf("request moved out of terminal state %s to %s", from, req.Status)
		}
	}
}

func TestComplete_OnlyFromApproved(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusPending)

	err := f.requests.Complete(context.Background(), ride.ID, passenger.ID, passenger.ID)
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition completing a pending request, got: %v", err)
	}
}

func TestCancel_OnlyByRequestingPassenger(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusPending)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusPending)

	// The driver cannot cancel on the passenger's behalf.
	err := f.requests.Cancel(context.Background(), ride.ID, passenger.ID, driver.ID)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}

	if err := f.requests.Cancel(context.Background(), ride.ID, passenger.ID, passenger.ID); err != nil {
		t.Fatalf("cancel by the requesting passenger failed: %v", err)
	}
	req, _ := f.store.Requests().Get(context.Background(), ride.ID, passenger.ID)
	if req.Status != domain.RequestStatusCancelled {
		t.Errorf("request status = %s, want CANCELLED", req.Status)
	}
}

// ──────────────────────────────────────────────
// 4. NOTIFICATIONS
// ──────────────────────────────────────────────

func TestApprove_NotifiesPassenger(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusPending)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusPending)

	if err := f.requests.Approve(context.Background(), ride.ID, passenger.ID, driver.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	events := f.sink.EventsFor(passenger.ID)
	if len(events) != 1 || events[0].Kind != service.EventRequestApproved {
		t.Errorf("expected one REQUEST_APPROVED event for passenger, got %+v", events)
	}
}

func TestApprove_FailedTransitionEmitsNothing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusRejected)

	_ = f.requests.Approve(context.Background(), ride.ID, passenger.ID, driver.ID)

	if events := f.sink.Events(); len(events) != 0 {
		t.Errorf("expected no events after failed approve, got %+v", events)
	}
}

// A committed transition must not be reported as failed just because the
// follow-up ride re-evaluation hit transient storage trouble; the next
// terminal transition repeats the computation.
func TestComplete_ReevaluationFailureDoesNotFailTransition(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 1, domain.RideStatusActive)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusApproved)

	f.store.Errors.RideUpdateStatus = errors.New("storage hiccup")
	if err := f.requests.Complete(ctx, ride.ID, passenger.ID, passenger.ID); err != nil {
		t.Fatalf("expected committed transition to report success, got: %v", err)
	}

	snap := f.store.Snapshot()
	if got := snap.Requests[requestKey(ride.ID, passenger.ID)].Status; got != domain.RequestStatusCompleted {
		t.Errorf("expected request COMPLETED, got %s", got)
	}
	if got := snap.Rides[ride.ID].Status; got != domain.RideStatusActive {
		t.Errorf("expected ride still ACTIVE after failed re-evaluation, got %s", got)
	}

	// Once storage recovers, the next re-evaluation finishes the ride.
	f.store.Errors.RideUpdateStatus = nil
	if err := f.rides.ReevaluateCompletion(ctx, ride.ID); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := f.store.Snapshot().Rides[ride.ID].Status; got != domain.RideStatusCompleted {
		t.Errorf("expected ride COMPLETED after retry, got %s", got)
	}
}
