package booking

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLifecycleOnSmallCabin(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())

	alice := NewPassenger("Alice", "P100")
	bob := NewPassenger("Bob", "P200")
	carol := NewPassenger("Carol", "P300")

	orderA, err := NewOrder(alice, f, 0)
	require.NoError(t, err)
	seat, ok := orderA.Seat()
	require.True(t, ok)
	assert.Equal(t, 1, seat)

	orderB, err := NewOrder(bob, f, 0)
	require.NoError(t, err)
	seat, ok = orderB.Seat()
	require.True(t, ok)
	assert.Equal(t, 2, seat)
	assert.Equal(t, FlightFull, f.Status())

	// Cabin is full; Carol gets nothing and no order exists for her.
	_, err = NewOrder(carol, f, 0)
	assert.True(t, IsStatusUnavailable(err))
	assert.Empty(t, carol.Orders())

	// Cancelling an unpaid order owes no refund and frees the seat.
	refund, err := orderA.Cancel()
	require.NoError(t, err)
	assert.False(t, refund)
	assert.Equal(t, OrderCancelled, orderA.Status())
	assert.Equal(t, FlightAvailable, f.Status())
	_, ok = orderA.Seat()
	assert.False(t, ok)

	// Cancelling a paid order owes a refund.
	require.NoError(t, orderB.Pay())
	refund, err = orderB.Cancel()
	require.NoError(t, err)
	assert.True(t, refund)
	assert.Equal(t, 0, f.Occupancy())
}

func TestPayOnlyFromUnpaid(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 0)
	require.NoError(t, err)
	require.NoError(t, o.Pay())

	var se *StatusUnavailableError
	err = o.Pay()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(OrderPaid), se.Status)

	_, err = o.Cancel()
	require.NoError(t, err)
	err = o.Pay()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(OrderCancelled), se.Status)
}

func TestCancelTwiceFails(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 0)
	require.NoError(t, err)
	_, err = o.Cancel()
	require.NoError(t, err)

	var se *StatusUnavailableError
	_, err = o.Cancel()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(OrderCancelled), se.Status)
}

func TestStatusPredicates(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 0)
	require.NoError(t, err)

	// IsUnpaid answers for UNPAID, not for PAID.
	assert.True(t, o.IsUnpaid())
	assert.False(t, o.IsPaid())

	require.NoError(t, o.Pay())
	assert.False(t, o.IsUnpaid())
	assert.True(t, o.IsPaid())

	_, err = o.Cancel()
	require.NoError(t, err)
	assert.True(t, o.IsCancelled())
	assert.False(t, o.IsUnpaid())
}

func TestRemoveFreesSeatAndPrunesPassenger(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 1)
	require.NoError(t, err)
	require.Len(t, p.Orders(), 1)

	o.Remove()
	assert.Empty(t, p.Orders())
	assert.Equal(t, 0, f.Occupancy())
	// Remove never rewrites the status.
	assert.Equal(t, OrderUnpaid, o.Status())
}

func TestRemoveCancelledOrderLeavesSeatsAlone(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	alice := NewPassenger("Alice", "P100")
	bob := NewPassenger("Bob", "P200")

	orderA, err := NewOrder(alice, f, 1)
	require.NoError(t, err)
	_, err = NewOrder(bob, f, 2)
	require.NoError(t, err)

	_, err = orderA.Cancel()
	require.NoError(t, err)
	require.Equal(t, 1, f.Occupancy())

	orderA.Remove()
	assert.Equal(t, 1, f.Occupancy())
	assert.Empty(t, alice.Orders())
}

func TestOrderSeatDerivedFromFlight(t *testing.T) {
	f := testFlight(t, 3)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 2)
	require.NoError(t, err)

	seat, ok := o.Seat()
	require.True(t, ok)
	assert.Equal(t, 2, seat)

	o.detachFlight()
	_, ok = o.Seat()
	assert.False(t, ok)
	assert.Nil(t, o.Flight())
}

func TestSummaryFixedBlock(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 1)
	require.NoError(t, err)

	want := fmt.Sprintf(
		"----------------------------\n"+
			"Passenger: Alice\n"+
			"Flight: CA1001\n"+
			"Seat: 1\n"+
			"Set Off Date: %s\n"+
			"Create Date: %s\n"+
			"Status: UNPAID\n"+
			"----------------------------",
		f.Departure().Format(time.RFC1123),
		o.CreatedAt().Format(time.RFC1123),
	)
	assert.Equal(t, want, o.Summary())
}

func TestSummaryAfterCancelAndFlightDeletion(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 1)
	require.NoError(t, err)

	_, err = o.Cancel()
	require.NoError(t, err)
	assert.Contains(t, o.Summary(), "Seat: null")
	assert.Contains(t, o.Summary(), "Status: CANCLE")

	o.detachFlight()
	summary := o.Summary()
	assert.Contains(t, summary, "Flight: deleted")
	assert.Contains(t, summary, "Set Off Date: flight deleted")
}

func TestReceiptRequiresPayment(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	o, err := NewOrder(p, f, 1)
	require.NoError(t, err)

	var se *StatusUnavailableError
	_, err = o.Receipt()
	require.ErrorAs(t, err, &se)
	assert.Empty(t, se.Status)

	require.NoError(t, o.Pay())
	receipt, err := o.Receipt()
	require.NoError(t, err)
	assert.Contains(t, receipt, "Passenger: Alice")
	assert.Contains(t, receipt, "Seat: 1")
	assert.Contains(t, receipt, "Status: PAID")
}
