package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	l := NewLedger()
	bj := l.AddCity("Beijing")
	sh := l.AddCity("Shanghai")
	alice := l.RegisterPassenger("Alice", "P100")
	bob := l.RegisterPassenger("Bob", "P200")

	dep := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	d, err := l.CreateDaemon("CA1001", dep, dep.Add(2*time.Hour), bj, sh, 1200, 3, 1100, 7)
	require.NoError(t, err)

	f, err := l.GenerateNext(d.ID())
	require.NoError(t, err)
	require.NoError(t, f.Publish())

	paid, err := l.CreateOrder(alice.ID(), f.ID(), 2)
	require.NoError(t, err)
	require.NoError(t, paid.Pay())

	cancelled, err := l.CreateOrder(bob.ID(), f.ID(), 0)
	require.NoError(t, err)
	_, err = cancelled.Cancel()
	require.NoError(t, err)

	// Snapshots survive a JSON round trip byte for byte.
	snap := l.Snapshot()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(again))

	restored, err := RestoreLedger(decoded)
	require.NoError(t, err)

	// Identity, seat map and statuses are reproduced exactly.
	rf, err := restored.Flight(f.ID())
	require.NoError(t, err)
	assert.Equal(t, f.Name(), rf.Name())
	assert.Equal(t, f.Status(), rf.Status())
	assert.Equal(t, f.Seats(), rf.Seats())
	assert.Equal(t, d.ID(), rf.DaemonID())
	require.NotNil(t, rf.Origin())
	assert.Equal(t, bj.ID(), rf.Origin().ID())

	rd, err := restored.Daemon(d.ID())
	require.NoError(t, err)
	assert.Equal(t, d.NextDeparture(), rd.NextDeparture())
	require.Len(t, rd.Flights(), 1)
	assert.Equal(t, f.ID(), rd.Flights()[0].ID())

	ro, err := restored.Order(paid.ID())
	require.NoError(t, err)
	assert.Equal(t, OrderPaid, ro.Status())
	seat, ok := ro.Seat()
	require.True(t, ok)
	assert.Equal(t, 2, seat)

	rc, err := restored.Order(cancelled.ID())
	require.NoError(t, err)
	assert.Equal(t, OrderCancelled, rc.Status())
	_, ok = rc.Seat()
	assert.False(t, ok)

	rp, err := restored.Passenger(alice.ID())
	require.NoError(t, err)
	assert.Len(t, rp.Orders(), 1)

	// The restored graph keeps behaving: the daemon continues from its
	// cursor, the flight accepts the remaining seat.
	next, err := rd.GenerateNext()
	require.NoError(t, err)
	assert.Equal(t, dep.Add(7*24*time.Hour), next.Departure())
}

func TestSnapshotCapturesUnregisteredRouteCities(t *testing.T) {
	l := NewLedger()

	// testFlight builds its route with cities that never go through
	// AddCity; a daemon can carry such a route too.
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	l.AddFlight(f)

	dep := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	d, err := l.CreateDaemon("MU5100", dep, dep.Add(3*time.Hour), NewCity("Chengdu"), NewCity("Xiamen"), 980, 150, 1200, 7)
	require.NoError(t, err)

	snap := l.Snapshot()
	assert.Len(t, snap.Cities, 4)

	restored, err := RestoreLedger(snap)
	require.NoError(t, err)

	rf, err := restored.Flight(f.ID())
	require.NoError(t, err)
	require.NotNil(t, rf.Origin())
	assert.Equal(t, f.Origin().ID(), rf.Origin().ID())
	assert.Equal(t, "Beijing", rf.Origin().Name())

	rd, err := restored.Daemon(d.ID())
	require.NoError(t, err)
	require.NotNil(t, rd.Destination())
	assert.Equal(t, "Xiamen", rd.Destination().Name())
}

func TestSnapshotKeepsDetachedOrders(t *testing.T) {
	l, f, p := testLedger(t)

	o, err := l.CreateOrder(p.ID(), f.ID(), 1)
	require.NoError(t, err)
	require.NoError(t, l.DeleteFlight(f.ID()))

	snap := l.Snapshot()
	restored, err := RestoreLedger(snap)
	require.NoError(t, err)

	ro, err := restored.Order(o.ID())
	require.NoError(t, err)
	assert.Nil(t, ro.Flight())
	_, ok := ro.Seat()
	assert.False(t, ok)
}

func TestRestoreRejectsDanglingReferences(t *testing.T) {
	l, f, p := testLedger(t)
	_, err := l.CreateOrder(p.ID(), f.ID(), 1)
	require.NoError(t, err)

	snap := l.Snapshot()
	snap.Passengers = nil
	_, err = RestoreLedger(snap)
	assert.Error(t, err)

	snap = l.Snapshot()
	snap.Flights = nil
	_, err = RestoreLedger(snap)
	assert.Error(t, err)
}
