package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/avitran/flightledger/internal/booking"
	"github.com/avitran/flightledger/internal/service"
)

// MockBookingService is a mock implementation of service.BookingService.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) ListFlights(ctx context.Context) []booking.FlightRecord {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]booking.FlightRecord)
}

func (m *MockBookingService) GetFlight(ctx context.Context, id uuid.UUID) (*booking.FlightRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.FlightRecord), args.Error(1)
}

func (m *MockBookingService) SearchFlights(ctx context.Context, query string) []booking.FlightRecord {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]booking.FlightRecord)
}

func (m *MockBookingService) SearchByRoute(ctx context.Context, originID, destinationID uuid.UUID, from, to time.Time) []booking.FlightRecord {
	args := m.Called(ctx, originID, destinationID, from, to)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]booking.FlightRecord)
}

func (m *MockBookingService) PublishFlight(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockBookingService) UpdateFlight(ctx context.Context, actor service.Actor, id uuid.UUID, upd service.FlightUpdate) error {
	args := m.Called(ctx, actor, id, upd)
	return args.Error(0)
}

func (m *MockBookingService) DeleteFlight(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockBookingService) CreateDaemon(ctx context.Context, actor service.Actor, req service.DaemonRequest) (*booking.DaemonRecord, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.DaemonRecord), args.Error(1)
}

func (m *MockBookingService) ListDaemons(ctx context.Context) []booking.DaemonRecord {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]booking.DaemonRecord)
}

func (m *MockBookingService) UpdateDaemon(ctx context.Context, actor service.Actor, id uuid.UUID, upd service.FlightUpdate) error {
	args := m.Called(ctx, actor, id, upd)
	return args.Error(0)
}

func (m *MockBookingService) DeleteDaemon(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockBookingService) GenerateNext(ctx context.Context, actor service.Actor, daemonID uuid.UUID) (*booking.FlightRecord, error) {
	args := m.Called(ctx, actor, daemonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.FlightRecord), args.Error(1)
}

func (m *MockBookingService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderView), args.Error(1)
}

func (m *MockBookingService) GetOrder(ctx context.Context, id uuid.UUID) (*service.OrderView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderView), args.Error(1)
}

func (m *MockBookingService) ListOrders(ctx context.Context, passengerID uuid.UUID) ([]service.OrderView, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.OrderView), args.Error(1)
}

func (m *MockBookingService) PayOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingService) CancelOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingService) RemoveOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingService) OrderReceipt(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockBookingService) RegisterPassenger(ctx context.Context, name, document string) (uuid.UUID, error) {
	args := m.Called(ctx, name, document)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockBookingService) AddCity(ctx context.Context, actor service.Actor, name string) (*booking.CityRecord, error) {
	args := m.Called(ctx, actor, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CityRecord), args.Error(1)
}

func (m *MockBookingService) RenameCity(ctx context.Context, actor service.Actor, id uuid.UUID, name string) error {
	args := m.Called(ctx, actor, id, name)
	return args.Error(0)
}

func (m *MockBookingService) ListCities(ctx context.Context) []booking.CityRecord {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]booking.CityRecord)
}
