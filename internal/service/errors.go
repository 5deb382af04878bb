package service

import "errors"

var (
	// ErrDuplicateRequest is returned when a passenger already holds a
	// request for the ride.
	ErrDuplicateRequest = errors.New("request already exists for this ride")

	// ErrUnauthorized is returned when the acting user lacks the required
	// relationship to the entity (not the ride's driver, not the
	// requesting passenger).
	ErrUnauthorized = errors.New("actor is not allowed to perform this operation")

	// ErrInvalidTransition is returned when an operation is attempted
	// from a state that does not permit it.
	ErrInvalidTransition = errors.New("request already processed")

	// ErrCapacityExceeded is returned when an approval would exceed the
	// ride's seat capacity.
	ErrCapacityExceeded = errors.New("ride is full")

	// ErrInvalidCapacity is returned when a ride is created with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")

	// ErrInvalidRideID is returned when the ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidInput is returned when required request fields are
	// missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidAmount is returned when a donation amount is not positive.
	ErrInvalidAmount = errors.New("invalid donation amount")

	// ErrPaymentFailed is returned when the payment gateway declines a
	// charge; the donation is not recorded.
	ErrPaymentFailed = errors.New("payment processing failed")

	// ErrEmptyMessage is returned when a chat message has no content.
	ErrEmptyMessage = errors.New("message content is empty")

	// ErrDeletionInProgress is returned when a cascade deletion for the
	// same user is already running.
	ErrDeletionInProgress = errors.New("deletion already in progress for this user")
)
