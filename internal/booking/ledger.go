package booking

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is the entity-collection root: every flight, daemon, passenger,
// city and order in the organization hangs off it. It replaces process-wide
// singletons; callers construct one and pass it to whatever needs it.
//
// The ledger mutex guards the collections only. Per-entity state is guarded
// by each entity's own mutex, so seat traffic on one flight never blocks
// another.
type Ledger struct {
	mu         sync.RWMutex
	flights    map[uuid.UUID]*Flight
	daemons    map[uuid.UUID]*FlightDaemon
	passengers map[uuid.UUID]*Passenger
	cities     map[uuid.UUID]*City
	orders     map[uuid.UUID]*Order
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		flights:    make(map[uuid.UUID]*Flight),
		daemons:    make(map[uuid.UUID]*FlightDaemon),
		passengers: make(map[uuid.UUID]*Passenger),
		cities:     make(map[uuid.UUID]*City),
		orders:     make(map[uuid.UUID]*Order),
	}
}

// --- Cities ---

// AddCity registers a new city.
func (l *Ledger) AddCity(name string) *City {
	c := NewCity(name)
	l.mu.Lock()
	l.cities[c.ID()] = c
	l.mu.Unlock()
	return c
}

func (l *Ledger) City(id uuid.UUID) (*City, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.cities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (l *Ledger) Cities() []*City {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*City, 0, len(l.cities))
	for _, c := range l.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out
}

// --- Passengers ---

// RegisterPassenger adds a passenger to the directory.
func (l *Ledger) RegisterPassenger(name, document string) *Passenger {
	p := NewPassenger(name, document)
	l.mu.Lock()
	l.passengers[p.ID()] = p
	l.mu.Unlock()
	return p
}

func (l *Ledger) Passenger(id uuid.UUID) (*Passenger, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.passengers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// --- Flights ---

// AddFlight registers a standalone flight (one created outside any daemon).
func (l *Ledger) AddFlight(f *Flight) {
	l.mu.Lock()
	l.flights[f.ID()] = f
	l.mu.Unlock()
}

func (l *Ledger) Flight(id uuid.UUID) (*Flight, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, ok := l.flights[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

// Flights returns every registered flight, deleted ones included, in a
// stable order.
func (l *Ledger) Flights() []*Flight {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Flight, 0, len(l.flights))
	for _, f := range l.flights {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out
}

// SearchFlights returns flights whose name contains the query,
// case-insensitively. Deleted flights are skipped.
func (l *Ledger) SearchFlights(query string) []*Flight {
	query = strings.ToLower(query)
	var out []*Flight
	for _, f := range l.Flights() {
		if f.Status() == FlightDeleted {
			continue
		}
		if strings.Contains(strings.ToLower(f.Name()), query) {
			out = append(out, f)
		}
	}
	return out
}

// SearchByRoute returns non-deleted flights between two cities departing in
// [from, to]. A nil city ID matches any endpoint.
func (l *Ledger) SearchByRoute(originID, destinationID uuid.UUID, from, to time.Time) []*Flight {
	var out []*Flight
	for _, f := range l.Flights() {
		if f.Status() == FlightDeleted {
			continue
		}
		if originID != uuid.Nil && (f.Origin() == nil || f.Origin().ID() != originID) {
			continue
		}
		if destinationID != uuid.Nil && (f.Destination() == nil || f.Destination().ID() != destinationID) {
			continue
		}
		dep := f.Departure()
		if dep.Before(from) || dep.After(to) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// DeleteFlight removes a flight. A flight with orders is soft-deleted and
// kept as a historical record, with every order's flight reference cleared;
// one without orders is dropped outright. Either way the flight is detached
// from its daemon.
func (l *Ledger) DeleteFlight(id uuid.UUID) error {
	l.mu.RLock()
	f, ok := l.flights[id]
	l.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	// Soft-delete first; a flight already deleted fails here and nothing
	// else is touched.
	if err := f.SoftDelete(); err != nil {
		return err
	}
	f.setDaemonID(uuid.Nil)

	l.mu.Lock()
	var affected []*Order
	for _, o := range l.orders {
		if o.Flight() == f {
			affected = append(affected, o)
		}
	}
	if len(affected) == 0 {
		delete(l.flights, id)
	}
	l.mu.Unlock()

	for _, o := range affected {
		o.detachFlight()
	}
	return nil
}

// --- Daemons ---

// CreateDaemon registers a recurring-flight template. No instance is
// generated yet; GenerateNext or GenerateDue materializes them.
func (l *Ledger) CreateDaemon(name string, departure, arrival time.Time, origin, destination *City, price float64, capacity, distance, periodDays int) (*FlightDaemon, error) {
	d, err := NewFlightDaemon(name, departure, arrival, origin, destination, price, capacity, distance, periodDays)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.daemons[d.ID()] = d
	l.mu.Unlock()
	return d, nil
}

func (l *Ledger) Daemon(id uuid.UUID) (*FlightDaemon, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.daemons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// Daemons returns the active daemons in a stable order.
func (l *Ledger) Daemons() []*FlightDaemon {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*FlightDaemon, 0, len(l.daemons))
	for _, d := range l.daemons {
		if d.Active() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out
}

// GenerateNext materializes the daemon's next occurrence and registers it.
func (l *Ledger) GenerateNext(daemonID uuid.UUID) (*Flight, error) {
	d, err := l.Daemon(daemonID)
	if err != nil {
		return nil, err
	}
	f, err := d.GenerateNext()
	if err != nil {
		return nil, err
	}
	l.AddFlight(f)
	return f, nil
}

// GenerateDue materializes, across all active daemons, every occurrence
// departing at or before the horizon, and registers the new flights.
func (l *Ledger) GenerateDue(until time.Time) []*Flight {
	var out []*Flight
	for _, d := range l.Daemons() {
		out = append(out, d.GenerateDue(until)...)
	}
	for _, f := range out {
		l.AddFlight(f)
	}
	return out
}

// DeleteDaemon retires a daemon. Its UNPUBLISHED instances are soft-deleted
// (and dropped from the ledger when orderless); published instances are
// detached but left bookable.
func (l *Ledger) DeleteDaemon(id uuid.UUID) error {
	l.mu.Lock()
	d, ok := l.daemons[id]
	if !ok {
		l.mu.Unlock()
		return ErrNotFound
	}
	delete(l.daemons, id)
	l.mu.Unlock()

	unpublished := make(map[uuid.UUID]bool)
	for _, f := range d.Flights() {
		if f.Status() == FlightUnpublished {
			unpublished[f.ID()] = true
		}
	}
	d.Deactivate()

	// Orderless soft-deleted instances have no historical value; drop them.
	l.mu.Lock()
	defer l.mu.Unlock()
	for fid := range unpublished {
		f, ok := l.flights[fid]
		if !ok {
			continue
		}
		hasOrders := false
		for _, o := range l.orders {
			if o.Flight() == f {
				hasOrders = true
				break
			}
		}
		if !hasOrders {
			delete(l.flights, fid)
		}
	}
	return nil
}

// --- Orders ---

// CreateOrder reserves a seat (0 for the lowest free one) and records the
// resulting order. Reservation failure produces no order.
func (l *Ledger) CreateOrder(passengerID, flightID uuid.UUID, seat int) (*Order, error) {
	p, err := l.Passenger(passengerID)
	if err != nil {
		return nil, err
	}
	f, err := l.Flight(flightID)
	if err != nil {
		return nil, err
	}
	o, err := NewOrder(p, f, seat)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.orders[o.ID()] = o
	l.mu.Unlock()
	return o, nil
}

func (l *Ledger) Order(id uuid.UUID) (*Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

// RemoveOrder hard-deletes an order: the seat is freed unless already
// cancelled, the passenger's list is pruned, and the order leaves the
// ledger.
func (l *Ledger) RemoveOrder(id uuid.UUID) error {
	l.mu.Lock()
	o, ok := l.orders[id]
	if !ok {
		l.mu.Unlock()
		return ErrNotFound
	}
	delete(l.orders, id)
	l.mu.Unlock()

	o.Remove()
	return nil
}
