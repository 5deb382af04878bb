package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 1. FULL-GRAPH DELETION
// ──────────────────────────────────────────────

// Deleting a driver removes the driver's rides and every dependent of
// those rides, plus everything the driver authored elsewhere, while
// other users' rows survive.
func TestCascade_DeletesDriverGraph(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusApproved)

	chat := &domain.Chat{ID: uuid.NewString(), RideID: ride.ID}
	f.store.AddChat(chat)
	f.store.AddMessage(&domain.Message{ID: uuid.NewString(), ChatID: chat.ID, AuthorID: passenger.ID, Content: "on my way"})
	f.store.AddFeedback(&domain.Feedback{ID: uuid.NewString(), AuthorID: passenger.ID, RideID: ride.ID, IssueType: "LATE"})
	f.store.AddDonation(&domain.Donation{ID: uuid.NewString(), DonorID: passenger.ID, RecipientID: driver.ID, Amount: 10})
	f.store.AddNotification(&domain.Notification{ID: uuid.NewString(), UserID: driver.ID, Message: "hello"})

	if err := f.cascade.DeleteUser(ctx, driver.ID); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	if _, err := f.store.Users().GetByID(ctx, driver.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("driver row should be gone, got: %v", err)
	}
	if _, err := f.store.Rides().GetByID(ctx, ride.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ride should be gone, got: %v", err)
	}
	if _, err := f.store.Requests().Get(ctx, ride.ID, passenger.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("request should be gone, got: %v", err)
	}
	if _, err := f.store.Chats().GetByRide(ctx, ride.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("chat should be gone, got: %v", err)
	}

	snap := f.store.Snapshot()
	if len(snap.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(snap.Messages))
	}
	if len(snap.Feedback) != 0 {
		t.Errorf("expected no feedback, got %d", len(snap.Feedback))
	}
	if len(snap.Donations) != 0 {
		t.Errorf("expected no donations, got %d", len(snap.Donations))
	}
	if len(snap.Notifications) != 0 {
		t.Errorf("expected no notifications, got %d", len(snap.Notifications))
	}

	// The passenger's account survives.
	if _, err := f.store.Users().GetByID(ctx, passenger.ID); err != nil {
		t.Errorf("passenger row should remain, got: %v", err)
	}
}

// Deleting a passenger removes the passenger's requests and messages but
// leaves other drivers' rides in place.
func TestCascade_DeletesPassengerSide(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusApproved)

	chat := &domain.Chat{ID: uuid.NewString(), RideID: ride.ID}
	f.store.AddChat(chat)
	f.store.AddMessage(&domain.Message{ID: uuid.NewString(), ChatID: chat.ID, AuthorID: passenger.ID, Content: "hi"})

	if err := f.cascade.DeleteUser(ctx, passenger.ID); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	if _, err := f.store.Requests().Get(ctx, ride.ID, passenger.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("passenger request should be gone, got: %v", err)
	}
	if _, err := f.store.Rides().GetByID(ctx, ride.ID); err != nil {
		t.Errorf("ride should remain, got: %v", err)
	}
	if _, err := f.store.Chats().GetByRide(ctx, ride.ID); err != nil {
		t.Errorf("chat should remain, got: %v", err)
	}
	if snap := f.store.Snapshot(); len(snap.Messages) != 0 {
		t.Errorf("passenger messages should be gone, got %d", len(snap.Messages))
	}
}

func TestCascade_UnknownUser(t *testing.T) {
	t.Parallel()

	f := newFixture()
	err := f.cascade.DeleteUser(context.Background(), "no-such-user")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. ATOMICITY UNDER INJECTED FAILURE
// ──────────────────────────────────────────────

// A storage failure partway through the cascade must roll back the
// whole deletion. No table may show partial removal afterwards.
func TestCascade_InjectedFailureRollsBackEverything(t *testing.T) {
	t.Parallel()

	injections := []struct {
		name   string
		inject func(errs *MockStoreErrors, fail error)
	}{
		{"request delete fails", func(e *MockStoreErrors, f error) { e.RequestDeleteByRide = f }},
		{"message delete fails", func(e *MockStoreErrors, f error) { e.MessageDeleteByChat = f }},
		{"feedback delete fails", func(e *MockStoreErrors, f error) { e.FeedbackDeleteByRide = f }},
		{"ride delete fails", func(e *MockStoreErrors, f error) { e.RideDelete = f }},
		{"user delete fails", func(e *MockStoreErrors, f error) { e.UserDelete = f }},
	}

	for _, tc := range injections {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			ctx := context.Background()
			driver := f.seedDriver()
			passenger := f.seedPassenger()
			ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
			f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusApproved)
			chat := &domain.Chat{ID: uuid.NewString(), RideID: ride.ID}
			f.store.AddChat(chat)
			f.store.AddMessage(&domain.Message{ID: uuid.NewString(), ChatID: chat.ID, AuthorID: passenger.ID, Content: "hello"})
			f.store.AddFeedback(&domain.Feedback{ID: uuid.NewString(), AuthorID: passenger.ID, RideID: ride.ID, IssueType: "OTHER"})

			boom := errors.New("storage failure")
			tc.inject(&f.store.Errors, boom)

			if err := f.cascade.DeleteUser(ctx, driver.ID); !errors.Is(err, boom) {
				t.Fatalf("expected injected failure, got: %v", err)
			}

			// Complete pre-deletion state must still be visible.
			if _, err := f.store.Users().GetByID(ctx, driver.ID); err != nil {
				t.Errorf("driver row missing after rollback: %v", err)
			}
			if _, err := f.store.Rides().GetByID(ctx, ride.ID); err != nil {
				t.Errorf("ride missing after rollback: %v", err)
			}
			if _, err := f.store.Requests().Get(ctx, ride.ID, passenger.ID); err != nil {
				t.Errorf("request missing after rollback: %v", err)
			}
			if _, err := f.store.Chats().GetByRide(ctx, ride.ID); err != nil {
				t.Errorf("chat missing after rollback: %v", err)
			}
			snap := f.store.Snapshot()
			if len(snap.Messages) != 1 {
				t.Errorf("messages = %d after rollback, want 1", len(snap.Messages))
			}
			if len(snap.Feedback) != 1 {
				t.Errorf("feedback = %d after rollback, want 1", len(snap.Feedback))
			}
		})
	}
}

// ──────────────────────────────────────────────
// 3. FULL DRIVER-DELETION SCENARIO
// ──────────────────────────────────────────────

// Driver owns a ride with one approved request and one chat message;
// deletion removes ride, request, chat, and message together, leaving
// the passenger account untouched.
func TestCascade_DriverWithApprovedRequestAndMessage(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 3, domain.RideStatusActive)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusApproved)
	chat := &domain.Chat{ID: uuid.NewString(), RideID: ride.ID}
	f.store.AddChat(chat)
	msg := &domain.Message{ID: uuid.NewString(), ChatID: chat.ID, AuthorID: driver.ID, Content: "leaving at 8"}
	f.store.AddMessage(msg)

	if err := f.cascade.DeleteUser(ctx, driver.ID); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	if _, err := f.store.Rides().GetByID(ctx, ride.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ride read = %v, want ErrNotFound", err)
	}
	if _, err := f.store.Requests().Get(ctx, ride.ID, passenger.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("request read = %v, want ErrNotFound", err)
	}
	if _, err := f.store.Chats().GetByID(ctx, chat.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("chat read = %v, want ErrNotFound", err)
	}
	if _, err := f.store.Messages().LastByChat(ctx, chat.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("message read = %v, want ErrNotFound", err)
	}
	if _, err := f.store.Users().GetByID(ctx, passenger.ID); err != nil {
		t.Errorf("passenger read = %v, want intact row", err)
	}
}

// ──────────────────────────────────────────────
// 5. ADVISORY DELETION LOCK
// ──────────────────────────────────────────────

type fakeLockStore struct {
	mu         sync.Mutex
	held       map[string]bool
	lastTTL    time.Duration
	acquireErr error
	released   []string
}

var _ redis.LockStoreInterface = (*fakeLockStore)(nil)

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{held: make(map[string]bool)}
}

func (f *fakeLockStore) AcquireDeletionLock(_ context.Context, userID string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTTL = ttl
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held[userID] {
		return false, nil
	}
	f.held[userID] = true
	return true, nil
}

func (f *fakeLockStore) ReleaseDeletionLock(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, userID)
	f.released = append(f.released, userID)
	return nil
}

func TestCascade_DeletionLock(t *testing.T) {
	t.Parallel()

	t.Run("acquired with a bounded ttl and released after", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		locks := newFakeLockStore()
		cascade := service.NewCascadeService(f.store, nil, locks, zap.NewNop())
		driver := f.seedDriver()

		if err := cascade.DeleteUser(context.Background(), driver.ID); err != nil {
			t.Fatalf("cascade failed: %v", err)
		}
		if locks.lastTTL <= 0 {
			t.Errorf("expected a positive lock ttl, got %v", locks.lastTTL)
		}
		if len(locks.released) != 1 || locks.released[0] != driver.ID {
			t.Errorf("expected lock released for %s, got %v", driver.ID, locks.released)
		}
	})

	t.Run("held lock rejects the overlapping deletion", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		locks := newFakeLockStore()
		cascade := service.NewCascadeService(f.store, nil, locks, zap.NewNop())
		driver := f.seedDriver()
		locks.held[driver.ID] = true

		if err := cascade.DeleteUser(context.Background(), driver.ID); !errors.Is(err, service.ErrDeletionInProgress) {
			t.Fatalf("expected ErrDeletionInProgress, got: %v", err)
		}
		if _, err := f.store.Users().GetByID(context.Background(), driver.ID); err != nil {
			t.Errorf("rejected deletion must leave the user intact: %v", err)
		}
	})

	t.Run("lock store failure falls back to the row lock", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		locks := newFakeLockStore()
		locks.acquireErr = errors.New("redis down")
		cascade := service.NewCascadeService(f.store, nil, locks, zap.NewNop())
		driver := f.seedDriver()

		if err := cascade.DeleteUser(context.Background(), driver.ID); err != nil {
			t.Fatalf("cascade should proceed without the advisory lock: %v", err)
		}
		if _, err := f.store.Users().GetByID(context.Background(), driver.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected user deleted, got: %v", err)
		}
	})
}
