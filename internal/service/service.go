package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avitran/flightledger/internal/booking"
	"github.com/avitran/flightledger/internal/observability"
	"github.com/avitran/flightledger/internal/websocket"
)

// Actor identifies the party an operation runs on behalf of. Privilege is
// established by the calling layer (gateway authentication); the service
// only checks the flag and surfaces PermissionDeniedError.
type Actor struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// CreateOrderRequest asks for a seat on a flight. Seat 0 means "lowest free
// seat".
type CreateOrderRequest struct {
	PassengerID uuid.UUID `json:"passengerId"`
	FlightID    uuid.UUID `json:"flightId"`
	Seat        int       `json:"seat,omitempty"`
}

// DaemonRequest carries the template fields for a new flight daemon.
type DaemonRequest struct {
	Name          string    `json:"name"`
	Departure     time.Time `json:"departure"`
	Arrival       time.Time `json:"arrival"`
	OriginID      uuid.UUID `json:"originId"`
	DestinationID uuid.UUID `json:"destinationId"`
	Price         float64   `json:"price"`
	Capacity      int       `json:"capacity"`
	Distance      int       `json:"distance"`
	PeriodDays    int       `json:"periodDays"`
}

// FlightUpdate is a partial administrative edit; nil fields are untouched.
// It applies to flights and to daemon templates alike.
type FlightUpdate struct {
	Name          *string    `json:"name,omitempty"`
	Departure     *time.Time `json:"departure,omitempty"`
	Arrival       *time.Time `json:"arrival,omitempty"`
	OriginID      *uuid.UUID `json:"originId,omitempty"`
	DestinationID *uuid.UUID `json:"destinationId,omitempty"`
	Price         *float64   `json:"price,omitempty"`
	Capacity      *int       `json:"capacity,omitempty"`
	Distance      *int       `json:"distance,omitempty"`
}

// OrderView is the read model of an order. Seat is derived live from the
// flight's seat map and absent when the flight is gone or the seat was
// released.
type OrderView struct {
	ID          uuid.UUID           `json:"id"`
	PassengerID uuid.UUID           `json:"passengerId"`
	FlightID    *uuid.UUID          `json:"flightId,omitempty"`
	Seat        *int                `json:"seat,omitempty"`
	Status      booking.OrderStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	Summary     string              `json:"summary"`
}

// BookingService is the operation surface consumed by the HTTP layer.
type BookingService interface {
	ListFlights(ctx context.Context) []booking.FlightRecord
	GetFlight(ctx context.Context, id uuid.UUID) (*booking.FlightRecord, error)
	SearchFlights(ctx context.Context, query string) []booking.FlightRecord
	SearchByRoute(ctx context.Context, originID, destinationID uuid.UUID, from, to time.Time) []booking.FlightRecord
	PublishFlight(ctx context.Context, actor Actor, id uuid.UUID) error
	UpdateFlight(ctx context.Context, actor Actor, id uuid.UUID, upd FlightUpdate) error
	DeleteFlight(ctx context.Context, actor Actor, id uuid.UUID) error

	CreateDaemon(ctx context.Context, actor Actor, req DaemonRequest) (*booking.DaemonRecord, error)
	ListDaemons(ctx context.Context) []booking.DaemonRecord
	UpdateDaemon(ctx context.Context, actor Actor, id uuid.UUID, upd FlightUpdate) error
	DeleteDaemon(ctx context.Context, actor Actor, id uuid.UUID) error
	GenerateNext(ctx context.Context, actor Actor, daemonID uuid.UUID) (*booking.FlightRecord, error)

	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListOrders(ctx context.Context, passengerID uuid.UUID) ([]OrderView, error)
	PayOrder(ctx context.Context, id uuid.UUID) error
	CancelOrder(ctx context.Context, id uuid.UUID) (bool, error)
	RemoveOrder(ctx context.Context, id uuid.UUID) error
	OrderReceipt(ctx context.Context, id uuid.UUID) (string, error)

	RegisterPassenger(ctx context.Context, name, document string) (uuid.UUID, error)
	AddCity(ctx context.Context, actor Actor, name string) (*booking.CityRecord, error)
	RenameCity(ctx context.Context, actor Actor, id uuid.UUID, name string) error
	ListCities(ctx context.Context) []booking.CityRecord
}

// ledgerService implements BookingService over an in-process ledger.
type ledgerService struct {
	ledger  *booking.Ledger
	hub     *websocket.Hub         // optional
	metrics *observability.Metrics // optional
	log     zerolog.Logger
}

// NewBookingService creates a BookingService. hub and metrics may be nil.
func NewBookingService(ledger *booking.Ledger, hub *websocket.Hub, metrics *observability.Metrics, log zerolog.Logger) BookingService {
	return &ledgerService{ledger: ledger, hub: hub, metrics: metrics, log: log}
}

func requireAdmin(actor Actor) error {
	if !actor.Admin {
		return &booking.PermissionDeniedError{Reason: "administrator required"}
	}
	return nil
}

// --- Flights ---

func (s *ledgerService) ListFlights(ctx context.Context) []booking.FlightRecord {
	flights := s.ledger.Flights()
	out := make([]booking.FlightRecord, 0, len(flights))
	for _, f := range flights {
		out = append(out, booking.SnapshotFlight(f))
	}
	return out
}

func (s *ledgerService) GetFlight(ctx context.Context, id uuid.UUID) (*booking.FlightRecord, error) {
	f, err := s.ledger.Flight(id)
	if err != nil {
		return nil, err
	}
	rec := booking.SnapshotFlight(f)
	return &rec, nil
}

func (s *ledgerService) SearchFlights(ctx context.Context, query string) []booking.FlightRecord {
	flights := s.ledger.SearchFlights(query)
	out := make([]booking.FlightRecord, 0, len(flights))
	for _, f := range flights {
		out = append(out, booking.SnapshotFlight(f))
	}
	return out
}

func (s *ledgerService) SearchByRoute(ctx context.Context, originID, destinationID uuid.UUID, from, to time.Time) []booking.FlightRecord {
	flights := s.ledger.SearchByRoute(originID, destinationID, from, to)
	out := make([]booking.FlightRecord, 0, len(flights))
	for _, f := range flights {
		out = append(out, booking.SnapshotFlight(f))
	}
	return out
}

func (s *ledgerService) PublishFlight(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	f, err := s.ledger.Flight(id)
	if err != nil {
		return err
	}
	if err := f.Publish(); err != nil {
		return err
	}
	s.log.Info().Stringer("flight", id).Str("actor", actor.Name).Msg("flight published")
	s.emit(&websocket.Message{
		Type:      websocket.MessageTypeFlightPublished,
		FlightID:  id,
		Status:    string(f.Status()),
		Occupancy: f.Occupancy(),
		Capacity:  f.Capacity(),
	})
	return nil
}

func (s *ledgerService) UpdateFlight(ctx context.Context, actor Actor, id uuid.UUID, upd FlightUpdate) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	f, err := s.ledger.Flight(id)
	if err != nil {
		return err
	}
	if upd.Name != nil {
		f.SetName(*upd.Name)
	}
	if upd.Departure != nil || upd.Arrival != nil {
		departure, arrival := f.Departure(), f.Arrival()
		if upd.Departure != nil {
			departure = *upd.Departure
		}
		if upd.Arrival != nil {
			arrival = *upd.Arrival
		}
		if err := f.SetSchedule(departure, arrival); err != nil {
			return err
		}
	}
	if upd.OriginID != nil || upd.DestinationID != nil {
		origin, destination, err := s.resolveRoute(f.Origin(), f.Destination(), upd)
		if err != nil {
			return err
		}
		f.SetRoute(origin, destination)
	}
	if upd.Price != nil {
		f.SetPrice(*upd.Price)
	}
	if upd.Capacity != nil {
		if err := f.SetCapacity(*upd.Capacity); err != nil {
			return err
		}
	}
	if upd.Distance != nil {
		f.SetDistance(*upd.Distance)
	}
	s.log.Info().Stringer("flight", id).Str("actor", actor.Name).Msg("flight updated")
	return nil
}

func (s *ledgerService) DeleteFlight(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.ledger.DeleteFlight(id); err != nil {
		return err
	}
	s.log.Info().Stringer("flight", id).Str("actor", actor.Name).Msg("flight deleted")
	s.emit(&websocket.Message{
		Type:     websocket.MessageTypeFlightDeleted,
		FlightID: id,
		Status:   string(booking.FlightDeleted),
	})
	return nil
}

// --- Daemons ---

func (s *ledgerService) CreateDaemon(ctx context.Context, actor Actor, req DaemonRequest) (*booking.DaemonRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	origin, err := s.ledger.City(req.OriginID)
	if err != nil {
		return nil, err
	}
	destination, err := s.ledger.City(req.DestinationID)
	if err != nil {
		return nil, err
	}
	d, err := s.ledger.CreateDaemon(req.Name, req.Departure, req.Arrival, origin, destination, req.Price, req.Capacity, req.Distance, req.PeriodDays)
	if err != nil {
		return nil, err
	}
	s.log.Info().Stringer("daemon", d.ID()).Str("actor", actor.Name).Int("periodDays", req.PeriodDays).Msg("daemon created")
	rec := booking.SnapshotDaemon(d)
	return &rec, nil
}

func (s *ledgerService) ListDaemons(ctx context.Context) []booking.DaemonRecord {
	daemons := s.ledger.Daemons()
	out := make([]booking.DaemonRecord, 0, len(daemons))
	for _, d := range daemons {
		out = append(out, booking.SnapshotDaemon(d))
	}
	return out
}

func (s *ledgerService) UpdateDaemon(ctx context.Context, actor Actor, id uuid.UUID, upd FlightUpdate) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	d, err := s.ledger.Daemon(id)
	if err != nil {
		return err
	}
	if upd.Name != nil {
		d.SetName(*upd.Name)
	}
	if upd.Departure != nil || upd.Arrival != nil {
		departure, arrival := d.Departure(), d.Arrival()
		if upd.Departure != nil {
			departure = *upd.Departure
		}
		if upd.Arrival != nil {
			arrival = *upd.Arrival
		}
		if err := d.SetSchedule(departure, arrival); err != nil {
			return err
		}
	}
	if upd.OriginID != nil || upd.DestinationID != nil {
		origin, destination, err := s.resolveRoute(d.Origin(), d.Destination(), upd)
		if err != nil {
			return err
		}
		d.SetRoute(origin, destination)
	}
	if upd.Price != nil {
		d.SetPrice(*upd.Price)
	}
	if upd.Capacity != nil {
		if err := d.SetCapacity(*upd.Capacity); err != nil {
			return err
		}
	}
	if upd.Distance != nil {
		d.SetDistance(*upd.Distance)
	}
	s.log.Info().Stringer("daemon", id).Str("actor", actor.Name).Msg("daemon template updated")
	return nil
}

func (s *ledgerService) DeleteDaemon(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.ledger.DeleteDaemon(id); err != nil {
		return err
	}
	s.log.Info().Stringer("daemon", id).Str("actor", actor.Name).Msg("daemon deleted")
	return nil
}

func (s *ledgerService) GenerateNext(ctx context.Context, actor Actor, daemonID uuid.UUID) (*booking.FlightRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	f, err := s.ledger.GenerateNext(daemonID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.FlightsGenerated.Inc()
	}
	s.emit(&websocket.Message{
		Type:     websocket.MessageTypeFlightGenerated,
		FlightID: f.ID(),
		Status:   string(f.Status()),
		Capacity: f.Capacity(),
	})
	rec := booking.SnapshotFlight(f)
	return &rec, nil
}

// --- Orders ---

func (s *ledgerService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	o, err := s.ledger.CreateOrder(req.PassengerID, req.FlightID, req.Seat)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
		s.metrics.SeatReservations.Inc()
	}
	f := o.Flight()
	seat, _ := o.Seat()
	s.log.Info().Stringer("order", o.ID()).Stringer("flight", req.FlightID).Int("seat", seat).Msg("order created")
	s.emit(&websocket.Message{
		Type:      websocket.MessageTypeSeatReserved,
		FlightID:  req.FlightID,
		Seat:      seat,
		Status:    string(f.Status()),
		Occupancy: f.Occupancy(),
		Capacity:  f.Capacity(),
	})
	v := orderView(o)
	return &v, nil
}

func (s *ledgerService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	o, err := s.ledger.Order(id)
	if err != nil {
		return nil, err
	}
	v := orderView(o)
	return &v, nil
}

func (s *ledgerService) ListOrders(ctx context.Context, passengerID uuid.UUID) ([]OrderView, error) {
	p, err := s.ledger.Passenger(passengerID)
	if err != nil {
		return nil, err
	}
	orders := p.Orders()
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView(o))
	}
	return out, nil
}

func (s *ledgerService) PayOrder(ctx context.Context, id uuid.UUID) error {
	o, err := s.ledger.Order(id)
	if err != nil {
		return err
	}
	if err := o.Pay(); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.OrdersPaid.Inc()
	}
	s.log.Info().Stringer("order", id).Msg("order paid")
	return nil
}

func (s *ledgerService) CancelOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	o, err := s.ledger.Order(id)
	if err != nil {
		return false, err
	}
	f := o.Flight()
	seat, _ := o.Seat()
	refund, err := o.Cancel()
	if err != nil {
		return false, err
	}
	if s.metrics != nil {
		s.metrics.OrdersCancelled.Inc()
		s.metrics.SeatReleases.Inc()
	}
	s.log.Info().Stringer("order", id).Bool("refund", refund).Msg("order cancelled")
	if f != nil {
		s.emit(&websocket.Message{
			Type:      websocket.MessageTypeSeatReleased,
			FlightID:  f.ID(),
			Seat:      seat,
			Status:    string(f.Status()),
			Occupancy: f.Occupancy(),
			Capacity:  f.Capacity(),
		})
	}
	return refund, nil
}

func (s *ledgerService) RemoveOrder(ctx context.Context, id uuid.UUID) error {
	o, err := s.ledger.Order(id)
	if err != nil {
		return err
	}
	f := o.Flight()
	seat, hadSeat := o.Seat()
	if err := s.ledger.RemoveOrder(id); err != nil {
		return err
	}
	if s.metrics != nil && hadSeat {
		s.metrics.SeatReleases.Inc()
	}
	s.log.Info().Stringer("order", id).Msg("order removed")
	if f != nil && hadSeat {
		s.emit(&websocket.Message{
			Type:      websocket.MessageTypeSeatReleased,
			FlightID:  f.ID(),
			Seat:      seat,
			Status:    string(f.Status()),
			Occupancy: f.Occupancy(),
			Capacity:  f.Capacity(),
		})
	}
	return nil
}

func (s *ledgerService) OrderReceipt(ctx context.Context, id uuid.UUID) (string, error) {
	o, err := s.ledger.Order(id)
	if err != nil {
		return "", err
	}
	return o.Receipt()
}

// --- Directory ---

func (s *ledgerService) RegisterPassenger(ctx context.Context, name, document string) (uuid.UUID, error) {
	p := s.ledger.RegisterPassenger(name, document)
	s.log.Info().Stringer("passenger", p.ID()).Msg("passenger registered")
	return p.ID(), nil
}

func (s *ledgerService) AddCity(ctx context.Context, actor Actor, name string) (*booking.CityRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c := s.ledger.AddCity(name)
	return &booking.CityRecord{ID: c.ID(), Name: c.Name()}, nil
}

func (s *ledgerService) RenameCity(ctx context.Context, actor Actor, id uuid.UUID, name string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	c, err := s.ledger.City(id)
	if err != nil {
		return err
	}
	c.Rename(name)
	return nil
}

func (s *ledgerService) ListCities(ctx context.Context) []booking.CityRecord {
	cities := s.ledger.Cities()
	out := make([]booking.CityRecord, 0, len(cities))
	for _, c := range cities {
		out = append(out, booking.CityRecord{ID: c.ID(), Name: c.Name()})
	}
	return out
}

func (s *ledgerService) resolveRoute(origin, destination *booking.City, upd FlightUpdate) (*booking.City, *booking.City, error) {
	var err error
	if upd.OriginID != nil {
		origin, err = s.ledger.City(*upd.OriginID)
		if err != nil {
			return nil, nil, err
		}
	}
	if upd.DestinationID != nil {
		destination, err = s.ledger.City(*upd.DestinationID)
		if err != nil {
			return nil, nil, err
		}
	}
	return origin, destination, nil
}

func (s *ledgerService) emit(msg *websocket.Message) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(msg)
}

func orderView(o *booking.Order) OrderView {
	v := OrderView{
		ID:          o.ID(),
		PassengerID: o.Passenger().ID(),
		Status:      o.Status(),
		CreatedAt:   o.CreatedAt(),
		Summary:     o.Summary(),
	}
	if f := o.Flight(); f != nil {
		id := f.ID()
		v.FlightID = &id
	}
	if seat, ok := o.Seat(); ok {
		v.Seat = &seat
	}
	return v
}
