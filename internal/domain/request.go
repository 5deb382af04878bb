package domain

import "time"

// RequestStatus represents the lifecycle state of a passenger request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
)

// Terminal reports whether the status has no outgoing transitions.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusRejected, RequestStatusCancelled, RequestStatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits moving to next.
// pending -> approved | rejected | cancelled; approved -> completed.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return next == RequestStatusApproved || next == RequestStatusRejected || next == RequestStatusCancelled
	case RequestStatusApproved:
		return next == RequestStatusCompleted
	}
	return false
}

// PassengerRequest is a passenger's claim on a seat in a ride.
// A passenger holds at most one request per ride.
type PassengerRequest struct {
	RideID      string
	PassengerID string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
