package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDaemon(t *testing.T, periodDays int) *FlightDaemon {
	t.Helper()
	dep := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	d, err := NewFlightDaemon("MU5100", dep, dep.Add(3*time.Hour), NewCity("Shanghai"), NewCity("Guangzhou"), 980, 150, 1200, periodDays)
	require.NoError(t, err)
	return d
}

func TestNewFlightDaemonValidation(t *testing.T) {
	dep := time.Now()
	_, err := NewFlightDaemon("X", dep, dep.Add(-time.Hour), nil, nil, 10, 5, 100, 1)
	assert.True(t, IsStatusUnavailable(err))
	_, err = NewFlightDaemon("X", dep, dep.Add(time.Hour), nil, nil, 10, 0, 100, 1)
	assert.True(t, IsStatusUnavailable(err))
	_, err = NewFlightDaemon("X", dep, dep.Add(time.Hour), nil, nil, 10, 5, 100, -1)
	assert.True(t, IsStatusUnavailable(err))
}

func TestOneOffDaemonGeneratesExactlyOnce(t *testing.T) {
	d := testDaemon(t, 0)

	f, err := d.GenerateNext()
	require.NoError(t, err)
	assert.Equal(t, FlightUnpublished, f.Status())
	assert.Equal(t, d.ID(), f.DaemonID())
	assert.Equal(t, d.Departure(), f.Departure())

	var se *StatusUnavailableError
	_, err = d.GenerateNext()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "EXHAUSTED", se.Status)
}

func TestRecurringDaemonAdvancesByPeriod(t *testing.T) {
	d := testDaemon(t, 7)
	duration := d.Arrival().Sub(d.Departure())

	first, err := d.GenerateNext()
	require.NoError(t, err)
	second, err := d.GenerateNext()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, second.Departure().Sub(first.Departure()))
	// Flight duration is carried over, not the literal arrival.
	assert.Equal(t, duration, second.Arrival().Sub(second.Departure()))
	assert.Len(t, d.Flights(), 2)
}

func TestGenerateDueStopsAtHorizon(t *testing.T) {
	d := testDaemon(t, 7)

	horizon := d.Departure().Add(15 * 24 * time.Hour)
	flights := d.GenerateDue(horizon)
	// Departures at day 0, 7 and 14 are due; day 21 is not.
	require.Len(t, flights, 3)
	assert.Equal(t, d.Departure().Add(21*24*time.Hour), d.NextDeparture())

	// A second pass over the same horizon generates nothing.
	assert.Empty(t, d.GenerateDue(horizon))
}

func TestTemplateEditsApplyToFutureInstancesOnly(t *testing.T) {
	d := testDaemon(t, 7)

	before, err := d.GenerateNext()
	require.NoError(t, err)

	d.SetName("MU5100-NEW")
	d.SetPrice(1500)
	require.NoError(t, d.SetCapacity(200))

	after, err := d.GenerateNext()
	require.NoError(t, err)

	assert.Equal(t, "MU5100", before.Name())
	assert.Equal(t, 980.0, before.Price())
	assert.Equal(t, 150, before.Capacity())

	assert.Equal(t, "MU5100-NEW", after.Name())
	assert.Equal(t, 1500.0, after.Price())
	assert.Equal(t, 200, after.Capacity())
}

func TestSetScheduleResetsGenerationCursor(t *testing.T) {
	d := testDaemon(t, 7)

	_, err := d.GenerateNext()
	require.NoError(t, err)
	require.NotEqual(t, d.Departure(), d.NextDeparture())

	newDep := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, d.SetSchedule(newDep, newDep.Add(2*time.Hour)))
	assert.Equal(t, newDep, d.NextDeparture())

	f, err := d.GenerateNext()
	require.NoError(t, err)
	assert.Equal(t, newDep, f.Departure())
}

func TestDeactivateCascades(t *testing.T) {
	d := testDaemon(t, 7)

	published, err := d.GenerateNext()
	require.NoError(t, err)
	require.NoError(t, published.Publish())

	unpublished, err := d.GenerateNext()
	require.NoError(t, err)

	d.Deactivate()
	assert.False(t, d.Active())
	assert.Empty(t, d.Flights())

	// Published instances stay bookable, unpublished ones are retired;
	// both lose their daemon attachment.
	assert.Equal(t, FlightAvailable, published.Status())
	assert.Equal(t, FlightDeleted, unpublished.Status())
	assert.Equal(t, uuid.Nil, published.DaemonID())
	assert.Equal(t, uuid.Nil, unpublished.DaemonID())

	var se *StatusUnavailableError
	_, err = d.GenerateNext()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "INACTIVE", se.Status)
	assert.Empty(t, d.GenerateDue(time.Now().Add(365*24*time.Hour)))
}
