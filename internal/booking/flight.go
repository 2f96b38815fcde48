package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FlightStatus is the publication/occupancy state of a flight.
type FlightStatus string

const (
	FlightUnpublished FlightStatus = "UNPUBLISHED"
	FlightAvailable   FlightStatus = "AVAILABLE"
	FlightFull        FlightStatus = "FULL"
	FlightDeleted     FlightStatus = "DELETED"
)

// Flight is a single bookable leg. It owns the seat ledger: the map from
// passenger to seat number, the capacity, and the status derived from them.
//
// The flight's mutex is the unit of mutual exclusion for seat bookkeeping.
// Every reservation and release for a given flight is serialized on it, so
// two concurrent reservations can never claim the same seat or push
// occupancy past capacity.
type Flight struct {
	mu          sync.Mutex
	id          uuid.UUID
	daemonID    uuid.UUID // zero when standalone or detached
	name        string
	departure   time.Time
	arrival     time.Time
	origin      *City
	destination *City
	price       float64
	capacity    int
	distance    int
	seats       map[uuid.UUID]int // passenger ID -> seat number in [1, capacity]
	status      FlightStatus
}

// NewFlight creates an unpublished flight. Capacity must be positive.
func NewFlight(name string, departure, arrival time.Time, origin, destination *City, price float64, capacity, distance int) (*Flight, error) {
	if capacity <= 0 {
		return nil, &StatusUnavailableError{Status: string(FlightUnpublished)}
	}
	return &Flight{
		id:          uuid.New(),
		name:        name,
		departure:   departure,
		arrival:     arrival,
		origin:      origin,
		destination: destination,
		price:       price,
		capacity:    capacity,
		distance:    distance,
		seats:       make(map[uuid.UUID]int),
		status:      FlightUnpublished,
	}, nil
}

func (f *Flight) ID() uuid.UUID { return f.id }

func (f *Flight) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *Flight) Departure() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.departure
}

func (f *Flight) Arrival() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.arrival
}

func (f *Flight) Origin() *City {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.origin
}

func (f *Flight) Destination() *City {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destination
}

func (f *Flight) Price() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price
}

func (f *Flight) Capacity() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.capacity
}

func (f *Flight) Distance() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.distance
}

func (f *Flight) Status() FlightStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Occupancy returns the number of reserved seats.
func (f *Flight) Occupancy() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seats)
}

// Seats returns a copy of the seat map.
func (f *Flight) Seats() map[uuid.UUID]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]int, len(f.seats))
	for p, s := range f.seats {
		out[p] = s
	}
	return out
}

// SeatOf returns the seat held by the given passenger, if any.
func (f *Flight) SeatOf(passengerID uuid.UUID) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[passengerID]
	return seat, ok
}

// DaemonID returns the identity of the daemon that generated this flight,
// or uuid.Nil when the flight is standalone or has been detached.
func (f *Flight) DaemonID() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.daemonID
}

// Reserve records a seat for the passenger. seat == 0 assigns the lowest
// unoccupied seat number; a positive seat claims that exact seat. The seat
// number reserved is returned. Reservation fails with StatusUnavailableError
// when the flight is deleted, the passenger already holds a seat, the
// requested seat is outside [1, capacity] or occupied, or no seat remains.
func (f *Flight) Reserve(passengerID uuid.UUID, seat int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == FlightDeleted {
		return 0, &StatusUnavailableError{Status: string(FlightDeleted)}
	}
	if _, held := f.seats[passengerID]; held {
		return 0, &StatusUnavailableError{Status: string(f.status)}
	}
	if seat == 0 {
		var ok bool
		seat, ok = f.lowestFreeSeat()
		if !ok {
			return 0, &StatusUnavailableError{Status: string(FlightFull)}
		}
	} else {
		if seat < 1 || seat > f.capacity {
			return 0, &StatusUnavailableError{Status: string(f.status)}
		}
		if f.seatTaken(seat) {
			return 0, &StatusUnavailableError{Status: string(f.status)}
		}
	}

	f.seats[passengerID] = seat
	if len(f.seats) == f.capacity && f.status == FlightAvailable {
		f.status = FlightFull
	}
	return seat, nil
}

// Release removes the passenger's seat entry. Holding no seat is not an
// error. A deleted flight keeps its seat map frozen as a historical record,
// so releasing against one is a no-op as well.
func (f *Flight) Release(passengerID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == FlightDeleted {
		return
	}
	if _, held := f.seats[passengerID]; !held {
		return
	}
	delete(f.seats, passengerID)
	if f.status == FlightFull && len(f.seats) < f.capacity {
		f.status = FlightAvailable
	}
}

// Publish opens the flight for reservation. Only an unpublished flight can
// be published; it comes up FULL when its seats were exhausted beforehand.
func (f *Flight) Publish() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != FlightUnpublished {
		return &StatusUnavailableError{Status: string(f.status)}
	}
	if len(f.seats) == f.capacity {
		f.status = FlightFull
	} else {
		f.status = FlightAvailable
	}
	return nil
}

// SoftDelete marks the flight DELETED. Existing seat reservations stay in
// place as historical records; no further reserve or release is accepted.
func (f *Flight) SoftDelete() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == FlightDeleted {
		return &StatusUnavailableError{Status: string(FlightDeleted)}
	}
	f.status = FlightDeleted
	return nil
}

func (f *Flight) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = name
}

// SetSchedule replaces the departure and arrival times. Arrival must not
// precede departure.
func (f *Flight) SetSchedule(departure, arrival time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if arrival.Before(departure) {
		return &StatusUnavailableError{Status: string(f.status)}
	}
	f.departure = departure
	f.arrival = arrival
	return nil
}

func (f *Flight) SetRoute(origin, destination *City) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.origin = origin
	f.destination = destination
}

func (f *Flight) SetPrice(price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price = price
}

// SetCapacity resizes the cabin. Shrinking below current occupancy would
// orphan reservations and is rejected.
func (f *Flight) SetCapacity(capacity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if capacity < len(f.seats) || capacity <= 0 {
		return &StatusUnavailableError{Status: string(f.status)}
	}
	f.capacity = capacity
	switch {
	case len(f.seats) == capacity && f.status == FlightAvailable:
		f.status = FlightFull
	case len(f.seats) < capacity && f.status == FlightFull:
		f.status = FlightAvailable
	}
	return nil
}

func (f *Flight) SetDistance(distance int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.distance = distance
}

func (f *Flight) setDaemonID(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.daemonID = id
}

func (f *Flight) seatTaken(seat int) bool {
	for _, s := range f.seats {
		if s == seat {
			return true
		}
	}
	return false
}

func (f *Flight) lowestFreeSeat() (int, bool) {
	taken := make(map[int]bool, len(f.seats))
	for _, s := range f.seats {
		taken[s] = true
	}
	for n := 1; n <= f.capacity; n++ {
		if !taken[n] {
			return n, true
		}
	}
	return 0, false
}
