package booking

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlight(t *testing.T, capacity int) *Flight {
	t.Helper()
	dep := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	f, err := NewFlight("CA1001", dep, dep.Add(2*time.Hour), NewCity("Beijing"), NewCity("Shanghai"), 1200, capacity, 1100)
	require.NoError(t, err)
	return f
}

func TestNewFlightRejectsNonPositiveCapacity(t *testing.T) {
	dep := time.Now()
	_, err := NewFlight("CA1001", dep, dep.Add(time.Hour), nil, nil, 100, 0, 500)
	assert.True(t, IsStatusUnavailable(err))

	_, err = NewFlight("CA1001", dep, dep.Add(time.Hour), nil, nil, 100, -3, 500)
	assert.True(t, IsStatusUnavailable(err))
}

func TestFlightStartsUnpublished(t *testing.T) {
	f := testFlight(t, 3)
	assert.Equal(t, FlightUnpublished, f.Status())
	assert.Equal(t, 0, f.Occupancy())
}

func TestReserveAutoAssignsLowestFreeSeat(t *testing.T) {
	f := testFlight(t, 3)
	require.NoError(t, f.Publish())

	a, b, c := uuid.New(), uuid.New(), uuid.New()

	seat, err := f.Reserve(a, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, seat)

	seat, err = f.Reserve(b, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, seat)

	// Seat 2 is the gap.
	seat, err = f.Reserve(c, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, seat)
	assert.Equal(t, FlightFull, f.Status())
}

func TestReserveFailsOnOccupiedSeat(t *testing.T) {
	f := testFlight(t, 3)
	require.NoError(t, f.Publish())

	a, b := uuid.New(), uuid.New()
	_, err := f.Reserve(a, 2)
	require.NoError(t, err)

	before := f.Seats()
	_, err = f.Reserve(b, 2)
	assert.True(t, IsStatusUnavailable(err))

	// A failed reservation leaves the seat map untouched.
	assert.Equal(t, before, f.Seats())
	assert.Equal(t, 1, f.Occupancy())
}

func TestReserveFailsOutOfRange(t *testing.T) {
	f := testFlight(t, 3)
	require.NoError(t, f.Publish())

	p := uuid.New()
	_, err := f.Reserve(p, 4)
	assert.True(t, IsStatusUnavailable(err))
	_, err = f.Reserve(p, -1)
	assert.True(t, IsStatusUnavailable(err))
}

func TestReserveFailsForExistingHolder(t *testing.T) {
	f := testFlight(t, 3)
	require.NoError(t, f.Publish())

	p := uuid.New()
	_, err := f.Reserve(p, 1)
	require.NoError(t, err)

	_, err = f.Reserve(p, 2)
	assert.True(t, IsStatusUnavailable(err))
	assert.Equal(t, 1, f.Occupancy())
}

func TestFullFlightRejectsReservation(t *testing.T) {
	f := testFlight(t, 1)
	require.NoError(t, f.Publish())

	_, err := f.Reserve(uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, FlightFull, f.Status())

	var se *StatusUnavailableError
	_, err = f.Reserve(uuid.New(), 0)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(FlightFull), se.Status)
}

func TestReleaseReopensFullFlight(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())

	a, b := uuid.New(), uuid.New()
	_, err := f.Reserve(a, 0)
	require.NoError(t, err)
	_, err = f.Reserve(b, 0)
	require.NoError(t, err)
	require.Equal(t, FlightFull, f.Status())

	f.Release(a)
	assert.Equal(t, FlightAvailable, f.Status())
	assert.Equal(t, 1, f.Occupancy())

	// Releasing a non-holder is a no-op.
	f.Release(uuid.New())
	assert.Equal(t, 1, f.Occupancy())
}

func TestPublishTransitions(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())
	assert.Equal(t, FlightAvailable, f.Status())

	// Publishing twice fails with the current status.
	var se *StatusUnavailableError
	err := f.Publish()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(FlightAvailable), se.Status)
}

func TestPublishAtCapacityComesUpFull(t *testing.T) {
	f := testFlight(t, 1)
	_, err := f.Reserve(uuid.New(), 0)
	require.NoError(t, err)

	require.NoError(t, f.Publish())
	assert.Equal(t, FlightFull, f.Status())
}

func TestDeletedFlightFreezesSeatMap(t *testing.T) {
	f := testFlight(t, 2)
	require.NoError(t, f.Publish())

	p := uuid.New()
	_, err := f.Reserve(p, 1)
	require.NoError(t, err)

	require.NoError(t, f.SoftDelete())
	assert.Equal(t, FlightDeleted, f.Status())

	// No further reservation.
	var se *StatusUnavailableError
	_, err = f.Reserve(uuid.New(), 0)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(FlightDeleted), se.Status)

	// Release is a no-op; the map is a historical record now.
	f.Release(p)
	assert.Equal(t, 1, f.Occupancy())

	// Deleting twice fails.
	assert.True(t, IsStatusUnavailable(f.SoftDelete()))
}

func TestSetCapacityGuardsOccupancy(t *testing.T) {
	f := testFlight(t, 3)
	require.NoError(t, f.Publish())

	_, err := f.Reserve(uuid.New(), 0)
	require.NoError(t, err)
	_, err = f.Reserve(uuid.New(), 0)
	require.NoError(t, err)

	assert.True(t, IsStatusUnavailable(f.SetCapacity(1)))
	assert.True(t, IsStatusUnavailable(f.SetCapacity(0)))
	assert.Equal(t, 3, f.Capacity())

	// Shrinking to exactly occupancy makes the flight FULL.
	require.NoError(t, f.SetCapacity(2))
	assert.Equal(t, FlightFull, f.Status())

	// Growing reopens it.
	require.NoError(t, f.SetCapacity(4))
	assert.Equal(t, FlightAvailable, f.Status())
}

func TestSetScheduleRejectsBackwardsWindow(t *testing.T) {
	f := testFlight(t, 2)
	dep := time.Now()
	assert.True(t, IsStatusUnavailable(f.SetSchedule(dep, dep.Add(-time.Minute))))
	require.NoError(t, f.SetSchedule(dep, dep))
}

func TestConcurrentReservationsNeverExceedCapacity(t *testing.T) {
	const capacity = 10
	const contenders = 50

	f := testFlight(t, capacity)
	require.NoError(t, f.Publish())

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Reserve(uuid.New(), 0); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, won)
	assert.Equal(t, capacity, f.Occupancy())
	assert.Equal(t, FlightFull, f.Status())

	// Every winner holds a distinct seat in [1, capacity].
	seen := make(map[int]bool)
	for _, seat := range f.Seats() {
		assert.GreaterOrEqual(t, seat, 1)
		assert.LessOrEqual(t, seat, capacity)
		assert.False(t, seen[seat], "seat %d assigned twice", seat)
		seen[seat] = true
	}
}
