package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassengerOrdersIsACopy(t *testing.T) {
	f := testFlight(t, 3)
	require.NoError(t, f.Publish())
	p := NewPassenger("Alice", "P100")

	_, err := NewOrder(p, f, 0)
	require.NoError(t, err)

	orders := p.Orders()
	orders[0] = nil
	require.Len(t, p.Orders(), 1)
	assert.NotNil(t, p.Orders()[0])
}

func TestCityRename(t *testing.T) {
	c := NewCity("Beijing")
	assert.Equal(t, "Beijing", c.Name())
	c.Rename("Peking")
	assert.Equal(t, "Peking", c.Name())
}
