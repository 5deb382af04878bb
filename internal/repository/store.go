package repository

import "context"

// Tx exposes repositories bound to a single transaction. Reads through a
// Tx observe the transaction's own writes; row locks taken via the
// *ForUpdate methods are held until the transaction ends.
type Tx interface {
	Users() UserRepository
	Roles() RoleRepository
	Rides() RideRepository
	Requests() RequestRepository
	Chats() ChatRepository
	Messages() MessageRepository
	Notifications() NotificationRepository
	Donations() DonationRepository
	Feedback() FeedbackRepository
}

// Store provides transactional access to the entity graph.
type Store interface {
	// Within runs fn inside a single transaction. If fn returns an
	// error the transaction is rolled back and the error is returned
	// unchanged; a failure to begin or commit is reported as ErrTxFailed.
	Within(ctx context.Context, fn func(tx Tx) error) error

	// Non-transactional repository access for read paths.
	Users() UserRepository
	Roles() RoleRepository
	Rides() RideRepository
	Requests() RequestRepository
	Chats() ChatRepository
	Messages() MessageRepository
	Notifications() NotificationRepository
	Donations() DonationRepository
	Feedback() FeedbackRepository
}
