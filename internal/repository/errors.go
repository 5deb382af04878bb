package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("entity already exists")

	// ErrTxFailed is returned when a transaction could not be started or
	// committed. This is the only retryable error class; every other
	// failure is deterministic for the same input.
	ErrTxFailed = errors.New("transaction failed")
)
