package tests

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// fixture bundles the services most tests need, wired to one shared
// in-memory store and a recording sink.
type fixture struct {
	store    *MockStore
	sink     *MockSink
	rides    *service.RideService
	requests *service.RequestService
	cascade  *service.CascadeService
}

func newFixture() *fixture {
	store := NewMockStore()
	sink := NewMockSink()
	logger := zap.NewNop()

	rides := service.NewRideService(store, nil, nil, sink, logger)
	requests := service.NewRequestService(store, rides, sink, logger)
	cascade := service.NewCascadeService(store, nil, nil, logger)

	return &fixture{
		store:    store,
		sink:     sink,
		rides:    rides,
		requests: requests,
		cascade:  cascade,
	}
}

func (f *fixture) seedDriver() *domain.User {
	u := &domain.User{ID: uuid.NewString(), Name: "Driver", Email: uuid.NewString() + "@example.com"}
	f.store.AddDriver(u)
	return u
}

func (f *fixture) seedPassenger() *domain.User {
	u := &domain.User{ID: uuid.NewString(), Name: "Passenger", Email: uuid.NewString() + "@example.com"}
	f.store.AddUser(u)
	return u
}

func (f *fixture) seedRide(driverID string, capacity int, status domain.RideStatus) *domain.Ride {
	r := &domain.Ride{
		ID:       uuid.NewString(),
		DriverID: driverID,
		Capacity: capacity,
		Status:   status,
	}
	f.store.AddRide(r)
	return r
}

func (f *fixture) seedRequest(rideID, passengerID string, status domain.RequestStatus) *domain.PassengerRequest {
	req := &domain.PassengerRequest{RideID: rideID, PassengerID: passengerID, Status: status}
	f.store.AddRequest(req)
	return req
}
