package tests

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/service"
)

func newChatFixture() (*fixture, *service.ChatService) {
	f := newFixture()
	return f, service.NewChatService(f.store, f.sink, zap.NewNop())
}

func TestProvisionChat_OnePerRide(t *testing.T) {
	t.Parallel()

	f, chats := newChatFixture()
	driver := f.seedDriver()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusPending)

	first, err := chats.ProvisionChat(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	second, err := chats.ProvisionChat(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("second provision failed: %v", err)
	}
	if first != second {
		t.Errorf("provision returned two chats for one ride: %s, %s", first, second)
	}
}

func TestSendMessage_ParticipantsOnly(t *testing.T) {
	t.Parallel()

	f, chats := newChatFixture()
	driver := f.seedDriver()
	passenger := f.seedPassenger()
	stranger := f.seedPassenger()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	f.seedRequest(ride.ID, passenger.ID, domain.RequestStatusApproved)

	if _, err := chats.SendMessage(context.Background(), ride.ID, driver.ID, "leaving at 8"); err != nil {
		t.Fatalf("driver message failed: %v", err)
	}
	if _, err := chats.SendMessage(context.Background(), ride.ID, passenger.ID, "see you"); err != nil {
		t.Fatalf("passenger message failed: %v", err)
	}
	if _, err := chats.SendMessage(context.Background(), ride.ID, stranger.ID, "hi"); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("stranger message: expected ErrUnauthorized, got: %v", err)
	}

	_, msgs, err := chats.GetForRide(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("get chat failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("message count = %d, want 2", len(msgs))
	}
}

func TestSendMessage_EmptyContent(t *testing.T) {
	t.Parallel()

	f, chats := newChatFixture()
	driver := f.seedDriver()
	ride := f.seedRide(driver.ID, 2, domain.RideStatusActive)

	if _, err := chats.SendMessage(context.Background(), ride.ID, driver.ID, "   "); !errors.Is(err, service.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got: %v", err)
	}
}

func TestSendMessage_NotifiesOtherParticipants(t *testing.T) {
	t.Parallel()

	f, chats := newChatFixture()
	driver := f.seedDriver()
	p1 := f.seedPassenger()
	p2 := f.seedPassenger()
	ride := f.seedRide(driver.ID, 3, domain.RideStatusActive)
	f.seedRequest(ride.ID, p1.ID, domain.RequestStatusApproved)
	f.seedRequest(ride.ID, p2.ID, domain.RequestStatusApproved)

	if _, err := chats.SendMessage(context.Background(), ride.ID, p1.ID, "running late"); err != nil {
		t.Fatalf("message failed: %v", err)
	}

	if events := f.sink.EventsFor(driver.ID); len(events) != 1 || events[0].Kind != service.EventChatMessage {
		t.Errorf("driver events = %+v, want one CHAT_MESSAGE", events)
	}
	if events := f.sink.EventsFor(p2.ID); len(events) != 1 {
		t.Errorf("co-passenger events = %+v, want one CHAT_MESSAGE", events)
	}
	if events := f.sink.EventsFor(p1.ID); len(events) != 0 {
		t.Errorf("author received own message notification: %+v", events)
	}
}

func TestListForUser_ParticipantRidesOnly(t *testing.T) {
	t.Parallel()

	f, chats := newChatFixture()
	driver := f.seedDriver()
	otherDriver := f.seedDriver()
	passenger := f.seedPassenger()

	owned := f.seedRide(driver.ID, 2, domain.RideStatusActive)
	joined := f.seedRide(otherDriver.ID, 2, domain.RideStatusActive)
	unrelated := f.seedRide(otherDriver.ID, 2, domain.RideStatusActive)
	f.seedRequest(joined.ID, passenger.ID, domain.RequestStatusApproved)

	for _, rideID := range []string{owned.ID, joined.ID, unrelated.ID} {
		if _, err := chats.ProvisionChat(context.Background(), rideID); err != nil {
			t.Fatalf("provision %s failed: %v", rideID, err)
		}
	}

	got, err := chats.ListForUser(context.Background(), driver.ID)
	if err != nil {
		t.Fatalf("list for driver failed: %v", err)
	}
	if len(got) != 1 || got[0].RideID != owned.ID {
		t.Errorf("driver chats: expected only ride %s, got %+v", owned.ID, got)
	}

	got, err = chats.ListForUser(context.Background(), passenger.ID)
	if err != nil {
		t.Fatalf("list for passenger failed: %v", err)
	}
	if len(got) != 1 || got[0].RideID != joined.ID {
		t.Errorf("passenger chats: expected only ride %s, got %+v", joined.ID, got)
	}

	if got, err := chats.ListForUser(context.Background(), f.seedPassenger().ID); err != nil || len(got) != 0 {
		t.Errorf("bystander chats: expected none, got %+v (err %v)", got, err)
	}
}
