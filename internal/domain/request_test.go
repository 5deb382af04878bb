package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, RequestStatusPending.Terminal())
	assert.False(t, RequestStatusApproved.Terminal())
	assert.True(t, RequestStatusRejected.Terminal())
	assert.True(t, RequestStatusCancelled.Terminal())
	assert.True(t, RequestStatusCompleted.Terminal())
}

func TestRequestStatusTransitions(t *testing.T) {
	allowed := map[RequestStatus][]RequestStatus{
		RequestStatusPending:  {RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled},
		RequestStatusApproved: {RequestStatusCompleted},
	}

	all := []RequestStatus{
		RequestStatusPending,
		RequestStatusApproved,
		RequestStatusRejected,
		RequestStatusCancelled,
		RequestStatusCompleted,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestRideOpen(t *testing.T) {
	assert.True(t, (&Ride{Status: RideStatusPending}).Open())
	assert.True(t, (&Ride{Status: RideStatusActive}).Open())
	assert.False(t, (&Ride{Status: RideStatusCompleted}).Open())
}
