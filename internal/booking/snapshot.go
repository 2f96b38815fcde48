package booking

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the value-typed image of the full ledger graph: everything a
// persistence layer needs to reconstruct identical behavior after reload.
// Seat maps and status enums round-trip verbatim.
type Snapshot struct {
	Cities     []CityRecord      `json:"cities"`
	Passengers []PassengerRecord `json:"passengers"`
	Daemons    []DaemonRecord    `json:"daemons"`
	Flights    []FlightRecord    `json:"flights"`
	Orders     []OrderRecord     `json:"orders"`
}

// CityRecord is the persisted form of a City.
type CityRecord struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PassengerRecord is the persisted form of a Passenger. Its order list is
// implied by the order records.
type PassengerRecord struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Document string    `json:"document"`
}

// FlightRecord is the persisted form of a Flight, seat map included.
type FlightRecord struct {
	ID            uuid.UUID         `json:"id"`
	DaemonID      uuid.UUID         `json:"daemonId,omitempty"`
	Name          string            `json:"name"`
	Departure     time.Time         `json:"departure"`
	Arrival       time.Time         `json:"arrival"`
	OriginID      uuid.UUID         `json:"originId"`
	DestinationID uuid.UUID         `json:"destinationId"`
	Price         float64           `json:"price"`
	Capacity      int               `json:"capacity"`
	Distance      int               `json:"distance"`
	Seats         map[uuid.UUID]int `json:"seats"`
	Status        FlightStatus      `json:"status"`
}

// DaemonRecord is the persisted form of a FlightDaemon, including the
// generation cursor so restored daemons continue where they stopped.
type DaemonRecord struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Departure     time.Time   `json:"departure"`
	Arrival       time.Time   `json:"arrival"`
	OriginID      uuid.UUID   `json:"originId"`
	DestinationID uuid.UUID   `json:"destinationId"`
	Price         float64     `json:"price"`
	Capacity      int         `json:"capacity"`
	Distance      int         `json:"distance"`
	PeriodDays    int         `json:"periodDays"`
	Active        bool        `json:"active"`
	NextDeparture time.Time   `json:"nextDeparture"`
	Generated     int         `json:"generated"`
	FlightIDs     []uuid.UUID `json:"flightIds"`
}

// OrderRecord is the persisted form of an Order. FlightID is uuid.Nil for
// orders whose flight has been deleted.
type OrderRecord struct {
	ID          uuid.UUID   `json:"id"`
	PassengerID uuid.UUID   `json:"passengerId"`
	FlightID    uuid.UUID   `json:"flightId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Status      OrderStatus `json:"status"`
}

// Snapshot captures the whole graph in a stable order.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var s Snapshot
	cities := make(map[uuid.UUID]*City, len(l.cities))
	for id, c := range l.cities {
		cities[id] = c
	}
	// Flights and daemons may carry route cities that were never registered
	// through AddCity; capture those too so every OriginID/DestinationID in
	// the snapshot resolves on restore.
	collect := func(c *City) {
		if c != nil {
			cities[c.ID()] = c
		}
	}
	for _, f := range l.flights {
		collect(f.Origin())
		collect(f.Destination())
	}
	for _, d := range l.daemons {
		collect(d.Origin())
		collect(d.Destination())
	}
	for _, c := range cities {
		s.Cities = append(s.Cities, CityRecord{ID: c.ID(), Name: c.Name()})
	}
	for _, p := range l.passengers {
		s.Passengers = append(s.Passengers, PassengerRecord{ID: p.ID(), Name: p.Name(), Document: p.Document()})
	}
	for _, d := range l.daemons {
		s.Daemons = append(s.Daemons, SnapshotDaemon(d))
	}
	for _, f := range l.flights {
		s.Flights = append(s.Flights, SnapshotFlight(f))
	}
	for _, o := range l.orders {
		s.Orders = append(s.Orders, SnapshotOrder(o))
	}

	sort.Slice(s.Cities, func(i, j int) bool { return s.Cities[i].ID.String() < s.Cities[j].ID.String() })
	sort.Slice(s.Passengers, func(i, j int) bool { return s.Passengers[i].ID.String() < s.Passengers[j].ID.String() })
	sort.Slice(s.Daemons, func(i, j int) bool { return s.Daemons[i].ID.String() < s.Daemons[j].ID.String() })
	sort.Slice(s.Flights, func(i, j int) bool { return s.Flights[i].ID.String() < s.Flights[j].ID.String() })
	sort.Slice(s.Orders, func(i, j int) bool { return s.Orders[i].ID.String() < s.Orders[j].ID.String() })
	return s
}

// SnapshotFlight captures one flight as a record.
func SnapshotFlight(f *Flight) FlightRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	seats := make(map[uuid.UUID]int, len(f.seats))
	for p, n := range f.seats {
		seats[p] = n
	}
	rec := FlightRecord{
		ID:        f.id,
		DaemonID:  f.daemonID,
		Name:      f.name,
		Departure: f.departure,
		Arrival:   f.arrival,
		Price:     f.price,
		Capacity:  f.capacity,
		Distance:  f.distance,
		Seats:     seats,
		Status:    f.status,
	}
	if f.origin != nil {
		rec.OriginID = f.origin.ID()
	}
	if f.destination != nil {
		rec.DestinationID = f.destination.ID()
	}
	return rec
}

// SnapshotOrder captures one order as a record.
func SnapshotOrder(o *Order) OrderRecord {
	o.mu.Lock()
	defer o.mu.Unlock()

	rec := OrderRecord{
		ID:          o.id,
		PassengerID: o.passenger.ID(),
		CreatedAt:   o.created,
		Status:      o.status,
	}
	if o.flight != nil {
		rec.FlightID = o.flight.ID()
	}
	return rec
}

// SnapshotDaemon captures one daemon as a record.
func SnapshotDaemon(d *FlightDaemon) DaemonRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := DaemonRecord{
		ID:            d.id,
		Name:          d.name,
		Departure:     d.departure,
		Arrival:       d.arrival,
		Price:         d.price,
		Capacity:      d.capacity,
		Distance:      d.distance,
		PeriodDays:    d.periodDays,
		Active:        d.active,
		NextDeparture: d.next,
		Generated:     d.generated,
	}
	if d.origin != nil {
		rec.OriginID = d.origin.ID()
	}
	if d.destination != nil {
		rec.DestinationID = d.destination.ID()
	}
	for _, f := range d.flights {
		rec.FlightIDs = append(rec.FlightIDs, f.ID())
	}
	return rec
}

// RestoreLedger rebuilds a ledger from a snapshot, rewiring every pointer:
// flights to cities and daemons, orders to passengers and flights. Dangling
// references are an error.
func RestoreLedger(s Snapshot) (*Ledger, error) {
	l := NewLedger()

	for _, cr := range s.Cities {
		l.cities[cr.ID] = &City{id: cr.ID, name: cr.Name}
	}
	for _, pr := range s.Passengers {
		l.passengers[pr.ID] = &Passenger{id: pr.ID, name: pr.Name, document: pr.Document}
	}

	cityRef := func(id uuid.UUID) (*City, error) {
		if id == uuid.Nil {
			return nil, nil
		}
		c, ok := l.cities[id]
		if !ok {
			return nil, fmt.Errorf("restore: unknown city %s", id)
		}
		return c, nil
	}

	for _, fr := range s.Flights {
		origin, err := cityRef(fr.OriginID)
		if err != nil {
			return nil, err
		}
		destination, err := cityRef(fr.DestinationID)
		if err != nil {
			return nil, err
		}
		seats := make(map[uuid.UUID]int, len(fr.Seats))
		for p, n := range fr.Seats {
			seats[p] = n
		}
		l.flights[fr.ID] = &Flight{
			id:          fr.ID,
			daemonID:    fr.DaemonID,
			name:        fr.Name,
			departure:   fr.Departure,
			arrival:     fr.Arrival,
			origin:      origin,
			destination: destination,
			price:       fr.Price,
			capacity:    fr.Capacity,
			distance:    fr.Distance,
			seats:       seats,
			status:      fr.Status,
		}
	}

	for _, dr := range s.Daemons {
		origin, err := cityRef(dr.OriginID)
		if err != nil {
			return nil, err
		}
		destination, err := cityRef(dr.DestinationID)
		if err != nil {
			return nil, err
		}
		d := &FlightDaemon{
			id:          dr.ID,
			name:        dr.Name,
			departure:   dr.Departure,
			arrival:     dr.Arrival,
			origin:      origin,
			destination: destination,
			price:       dr.Price,
			capacity:    dr.Capacity,
			distance:    dr.Distance,
			periodDays:  dr.PeriodDays,
			active:      dr.Active,
			next:        dr.NextDeparture,
			generated:   dr.Generated,
		}
		for _, fid := range dr.FlightIDs {
			f, ok := l.flights[fid]
			if !ok {
				return nil, fmt.Errorf("restore: daemon %s references unknown flight %s", dr.ID, fid)
			}
			d.flights = append(d.flights, f)
		}
		l.daemons[dr.ID] = d
	}

	for _, or := range s.Orders {
		p, ok := l.passengers[or.PassengerID]
		if !ok {
			return nil, fmt.Errorf("restore: order %s references unknown passenger %s", or.ID, or.PassengerID)
		}
		var f *Flight
		if or.FlightID != uuid.Nil {
			f, ok = l.flights[or.FlightID]
			if !ok {
				return nil, fmt.Errorf("restore: order %s references unknown flight %s", or.ID, or.FlightID)
			}
		}
		o := &Order{
			id:        or.ID,
			passenger: p,
			flight:    f,
			created:   or.CreatedAt,
			status:    or.Status,
		}
		l.orders[or.ID] = o
		p.orders = append(p.orders, o)
	}

	return l, nil
}
