package booking

import (
	"sync"

	"github.com/google/uuid"
)

// City is a route endpoint referenced by flights and daemons. Cities are
// managed by the directory layer outside the ledger core; only identity and
// a renamable display name live here.
type City struct {
	mu   sync.Mutex
	id   uuid.UUID
	name string
}

// NewCity creates a city with a fresh identity.
func NewCity(name string) *City {
	return &City{id: uuid.New(), name: name}
}

func (c *City) ID() uuid.UUID { return c.id }

func (c *City) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *City) Rename(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}
