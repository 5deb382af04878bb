package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending   RideStatus = "PENDING"
	RideStatusActive    RideStatus = "ACTIVE"
	RideStatusCompleted RideStatus = "COMPLETED"
)

// Ride represents a driver-owned trip offer with a fixed seat capacity.
type Ride struct {
	ID            string
	DriverID      string
	OriginLat     float64
	OriginLng     float64
	DestinationLat float64
	DestinationLng float64
	RequestedTime time.Time
	Capacity      int
	Fare          float64
	Status        RideStatus
	CreatedAt     time.Time
}

// Open reports whether the ride still accepts passenger requests.
func (r *Ride) Open() bool {
	return r.Status != RideStatusCompleted
}
