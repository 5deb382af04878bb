package service

import "context"

// EventKind identifies a lifecycle event announced to users.
type EventKind string

const (
	EventRequestSubmitted EventKind = "REQUEST_SUBMITTED"
	EventRequestApproved  EventKind = "REQUEST_APPROVED"
	EventRequestRejected  EventKind = "REQUEST_REJECTED"
	EventRequestCancelled EventKind = "REQUEST_CANCELLED"
	EventRequestCompleted EventKind = "REQUEST_COMPLETED"
	EventRideCreated      EventKind = "RIDE_CREATED"
	EventRideCompleted    EventKind = "RIDE_COMPLETED"
	EventDonationReceived EventKind = "DONATION_RECEIVED"
	EventChatMessage      EventKind = "CHAT_MESSAGE"
)

// NotificationSink receives lifecycle events for asynchronous delivery.
// Implementations are invoked after the originating transaction commits;
// a delivery failure never rolls the transaction back.
type NotificationSink interface {
	Notify(ctx context.Context, userID string, kind EventKind, payload map[string]any) error
}

// ChatProvisioner creates the chat attached to a ride. Called best-effort
// at ride creation; a provisioning failure does not fail the ride.
type ChatProvisioner interface {
	ProvisionChat(ctx context.Context, rideID string) (chatID string, err error)
}
