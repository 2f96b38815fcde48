package booking

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the payment/cancellation state of an order.
type OrderStatus string

const (
	OrderUnpaid OrderStatus = "UNPAID"
	OrderPaid   OrderStatus = "PAID"
	// The "CANCLE" spelling is preserved so rendered orders and persisted
	// snapshots stay byte-compatible with existing ledger dumps.
	OrderCancelled OrderStatus = "CANCLE"
)

// Order binds a passenger to a flight seat and layers the payment state
// machine (UNPAID -> PAID -> CANCLE, or UNPAID -> CANCLE) on top of the
// flight's seat reservation. The order never duplicates the seat number:
// the seat is looked up live in the flight's seat map, and degrades to
// "no seat" once the flight is gone.
type Order struct {
	mu        sync.Mutex
	id        uuid.UUID
	passenger *Passenger
	flight    *Flight // nil once the flight has been deleted from the ledger
	created   time.Time
	status    OrderStatus
}

// NewOrder reserves a seat on the flight (seat == 0 picks the lowest free
// one) and creates an UNPAID order for it. If the reservation fails no
// order is produced and nothing is mutated.
func NewOrder(passenger *Passenger, flight *Flight, seat int) (*Order, error) {
	if _, err := flight.Reserve(passenger.ID(), seat); err != nil {
		return nil, err
	}
	o := &Order{
		id:        uuid.New(),
		passenger: passenger,
		flight:    flight,
		created:   time.Now(),
		status:    OrderUnpaid,
	}
	passenger.addOrder(o)
	return o, nil
}

func (o *Order) ID() uuid.UUID { return o.id }

func (o *Order) Passenger() *Passenger { return o.passenger }

// Flight returns the referenced flight, or nil when it has been deleted.
func (o *Order) Flight() *Flight {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flight
}

func (o *Order) CreatedAt() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.created
}

func (o *Order) Status() OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Order) IsPaid() bool      { return o.Status() == OrderPaid }
func (o *Order) IsUnpaid() bool    { return o.Status() == OrderUnpaid }
func (o *Order) IsCancelled() bool { return o.Status() == OrderCancelled }

// Seat returns the seat derived from the flight's seat map. ok is false
// when the flight is gone or the passenger holds no seat on it.
func (o *Order) Seat() (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.flight == nil {
		return 0, false
	}
	return o.flight.SeatOf(o.passenger.ID())
}

// Pay transitions UNPAID -> PAID. Any other starting status fails with a
// StatusUnavailableError carrying that status.
func (o *Order) Pay() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != OrderUnpaid {
		return &StatusUnavailableError{Status: string(o.status)}
	}
	o.status = OrderPaid
	return nil
}

// Cancel releases the seat and transitions to CANCLE. It reports whether a
// refund is owed: true exactly when the order was PAID immediately before
// the call. Cancelling twice fails with StatusUnavailableError.
func (o *Order) Cancel() (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status == OrderCancelled {
		return false, &StatusUnavailableError{Status: string(OrderCancelled)}
	}
	refund := o.status == OrderPaid
	o.releaseSeatLocked()
	o.status = OrderCancelled
	return refund, nil
}

// Remove hard-deletes the order from its passenger's order list. A not-yet
// cancelled order also has its seat released, which lets the flight fall
// back to AVAILABLE. The status itself is left untouched.
func (o *Order) Remove() {
	o.mu.Lock()
	if o.status != OrderCancelled {
		o.releaseSeatLocked()
	}
	o.mu.Unlock()
	o.passenger.removeOrder(o)
}

// releaseSeatLocked is the single seat-release primitive shared by Cancel
// and Remove. Caller holds o.mu.
func (o *Order) releaseSeatLocked() {
	if o.flight == nil {
		return
	}
	o.flight.Release(o.passenger.ID())
}

// detachFlight drops the flight reference after the flight is deleted from
// the ledger. Seat lookups degrade to "unavailable" from then on.
func (o *Order) detachFlight() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flight = nil
}

const summaryDivider = "----------------------------"

// Summary renders the fixed multi-line order block used by listings. Field
// labels, their order, and the "deleted"/"flight deleted"/"null"
// placeholders are part of the contract.
func (o *Order) Summary() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	flightName := "deleted"
	setOff := "flight deleted"
	if o.flight != nil {
		flightName = o.flight.Name()
		setOff = o.flight.Departure().Format(time.RFC1123)
	}

	seat := "null"
	if o.status != OrderCancelled && o.flight != nil {
		if n, ok := o.flight.SeatOf(o.passenger.ID()); ok {
			seat = fmt.Sprintf("%d", n)
		}
	}

	return fmt.Sprintf(
		"%s\nPassenger: %s\nFlight: %s\nSeat: %s\nSet Off Date: %s\nCreate Date: %s\nStatus: %s\n%s",
		summaryDivider,
		o.passenger.Name(),
		flightName,
		seat,
		setOff,
		o.created.Format(time.RFC1123),
		string(o.status),
		summaryDivider,
	)
}

// Receipt renders the paid-order receipt. Rendering anything but a PAID
// order fails with a detail-less StatusUnavailableError.
func (o *Order) Receipt() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != OrderPaid {
		return "", &StatusUnavailableError{}
	}

	flightName := "deleted"
	seat := "null"
	if o.flight != nil {
		flightName = o.flight.Name()
		if n, ok := o.flight.SeatOf(o.passenger.ID()); ok {
			seat = fmt.Sprintf("%d", n)
		}
	}
	return fmt.Sprintf(
		"Passenger: %s\nSeat: %s\nFlight: %s\nCreate Date: %s\nStatus: %s",
		o.passenger.Name(),
		seat,
		flightName,
		o.created.Format(time.RFC1123),
		string(o.status),
	), nil
}
