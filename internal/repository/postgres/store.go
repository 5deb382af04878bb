package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carpool/internal/repository"
)

// Store implements repository.Store on top of *sql.DB.
type Store struct {
	db *sql.DB
	repos
}

// repos bundles one repository per entity over a shared Querier.
type repos struct {
	users         *UserRepository
	roles         *RoleRepository
	rides         *RideRepository
	requests      *RequestRepository
	chats         *ChatRepository
	messages      *MessageRepository
	notifications *NotificationRepository
	donations     *DonationRepository
	feedback      *FeedbackRepository
}

func newRepos(q Querier) repos {
	return repos{
		users:         &UserRepository{q: q},
		roles:         &RoleRepository{q: q},
		rides:         &RideRepository{q: q},
		requests:      &RequestRepository{q: q},
		chats:         &ChatRepository{q: q},
		messages:      &MessageRepository{q: q},
		notifications: &NotificationRepository{q: q},
		donations:     &DonationRepository{q: q},
		feedback:      &FeedbackRepository{q: q},
	}
}

func (r repos) Users() repository.UserRepository                 { return r.users }
func (r repos) Roles() repository.RoleRepository                 { return r.roles }
func (r repos) Rides() repository.RideRepository                 { return r.rides }
func (r repos) Requests() repository.RequestRepository           { return r.requests }
func (r repos) Chats() repository.ChatRepository                 { return r.chats }
func (r repos) Messages() repository.MessageRepository           { return r.messages }
func (r repos) Notifications() repository.NotificationRepository { return r.notifications }
func (r repos) Donations() repository.DonationRepository         { return r.donations }
func (r repos) Feedback() repository.FeedbackRepository          { return r.feedback }

// NewStore creates a Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: newRepos(db)}
}

// tx is the transaction-bound repository set.
type tx struct {
	repos
}

var _ repository.Tx = (*tx)(nil)
var _ repository.Store = (*Store)(nil)

// Within runs fn inside a single database transaction. Domain errors
// returned by fn roll the transaction back and pass through unchanged; a
// begin or commit failure is reported as repository.ErrTxFailed so callers
// can distinguish the retryable storage class.
func (s *Store) Within(ctx context.Context, fn func(tx repository.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", repository.ErrTxFailed, err)
	}

	if err := fn(&tx{repos: newRepos(sqlTx)}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", repository.ErrTxFailed, err)
	}
	return nil
}
