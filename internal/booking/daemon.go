package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FlightDaemon is a recurring-schedule template. It owns the route, price
// and cabin parameters shared by the flight instances it generates, plus a
// recurrence period in days (0 means a one-off flight).
//
// Template edits apply to instances generated after the edit only; already
// generated flights are independently mutable and never touched again by
// the daemon.
type FlightDaemon struct {
	mu          sync.Mutex
	id          uuid.UUID
	name        string
	departure   time.Time
	arrival     time.Time
	origin      *City
	destination *City
	price       float64
	capacity    int
	distance    int
	periodDays  int
	active      bool
	next        time.Time // departure of the next instance to generate
	generated   int
	flights     []*Flight
}

// NewFlightDaemon creates an active daemon. Capacity must be positive and
// arrival must not precede departure.
func NewFlightDaemon(name string, departure, arrival time.Time, origin, destination *City, price float64, capacity, distance, periodDays int) (*FlightDaemon, error) {
	if capacity <= 0 || arrival.Before(departure) || periodDays < 0 {
		return nil, &StatusUnavailableError{}
	}
	return &FlightDaemon{
		id:          uuid.New(),
		name:        name,
		departure:   departure,
		arrival:     arrival,
		origin:      origin,
		destination: destination,
		price:       price,
		capacity:    capacity,
		distance:    distance,
		periodDays:  periodDays,
		active:      true,
		next:        departure,
	}, nil
}

func (d *FlightDaemon) ID() uuid.UUID { return d.id }

// Active reports whether the daemon still generates instances. An inactive
// daemon is excluded from listings and generates nothing further.
func (d *FlightDaemon) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *FlightDaemon) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

func (d *FlightDaemon) Departure() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.departure
}

func (d *FlightDaemon) Arrival() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.arrival
}

func (d *FlightDaemon) Origin() *City {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.origin
}

func (d *FlightDaemon) Destination() *City {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destination
}

func (d *FlightDaemon) Price() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.price
}

func (d *FlightDaemon) Capacity() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capacity
}

func (d *FlightDaemon) Distance() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.distance
}

func (d *FlightDaemon) PeriodDays() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.periodDays
}

// NextDeparture returns the departure time of the next instance the daemon
// would generate.
func (d *FlightDaemon) NextDeparture() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

// Flights returns a copy of the generated-instance list, in generation
// order.
func (d *FlightDaemon) Flights() []*Flight {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Flight, len(d.flights))
	copy(out, d.flights)
	return out
}

// GenerateNext materializes the next occurrence as a fresh UNPUBLISHED
// flight carrying the template fields as they stand now. A one-off daemon
// (period 0) generates exactly one instance; an inactive or exhausted
// daemon fails with StatusUnavailableError.
func (d *FlightDaemon) GenerateNext() (*Flight, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generateLocked()
}

// GenerateDue materializes every occurrence departing at or before the
// given horizon. The new flights are returned in departure order.
func (d *FlightDaemon) GenerateDue(until time.Time) []*Flight {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*Flight
	for d.active && !d.next.After(until) {
		f, err := d.generateLocked()
		if err != nil {
			break
		}
		out = append(out, f)
	}
	return out
}

func (d *FlightDaemon) generateLocked() (*Flight, error) {
	if !d.active {
		return nil, &StatusUnavailableError{Status: "INACTIVE"}
	}
	if d.periodDays == 0 && d.generated > 0 {
		return nil, &StatusUnavailableError{Status: "EXHAUSTED"}
	}

	duration := d.arrival.Sub(d.departure)
	f, err := NewFlight(d.name, d.next, d.next.Add(duration), d.origin, d.destination, d.price, d.capacity, d.distance)
	if err != nil {
		return nil, err
	}
	f.setDaemonID(d.id)

	d.flights = append(d.flights, f)
	d.generated++
	if d.periodDays > 0 {
		d.next = d.next.Add(time.Duration(d.periodDays) * 24 * time.Hour)
	}
	return f, nil
}

func (d *FlightDaemon) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

// SetSchedule replaces the template departure and arrival. The generation
// cursor restarts from the new departure; instances already generated keep
// their times.
func (d *FlightDaemon) SetSchedule(departure, arrival time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if arrival.Before(departure) {
		return &StatusUnavailableError{}
	}
	d.departure = departure
	d.arrival = arrival
	d.next = departure
	return nil
}

func (d *FlightDaemon) SetRoute(origin, destination *City) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.origin = origin
	d.destination = destination
}

func (d *FlightDaemon) SetPrice(price float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.price = price
}

func (d *FlightDaemon) SetCapacity(capacity int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if capacity <= 0 {
		return &StatusUnavailableError{}
	}
	d.capacity = capacity
	return nil
}

func (d *FlightDaemon) SetDistance(distance int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.distance = distance
}

// Deactivate retires the daemon and cascades to its generated instances:
// flights still UNPUBLISHED are soft-deleted, published flights are left
// intact, and every instance is detached from the daemon.
func (d *FlightDaemon) Deactivate() {
	d.mu.Lock()
	flights := d.flights
	d.flights = nil
	d.active = false
	d.mu.Unlock()

	// Flight mutexes are taken after the daemon mutex is dropped.
	for _, f := range flights {
		if f.Status() == FlightUnpublished {
			_ = f.SoftDelete()
		}
		f.setDaemonID(uuid.Nil)
	}
}
