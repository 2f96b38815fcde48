package booking

import (
	"sync"

	"github.com/google/uuid"
)

// Passenger is the logical owner of its orders. The order list is a
// back-reference kept for display and cleanup; the orders themselves drive
// every mutation of it.
type Passenger struct {
	mu       sync.Mutex
	id       uuid.UUID
	name     string
	document string
	orders   []*Order
}

// NewPassenger creates a passenger with a fresh identity. The document is
// the identity-card number captured at registration; it is opaque to the
// ledger.
func NewPassenger(name, document string) *Passenger {
	return &Passenger{id: uuid.New(), name: name, document: document}
}

func (p *Passenger) ID() uuid.UUID { return p.id }

// Document returns the identity-card number captured at registration.
func (p *Passenger) Document() string { return p.document }

func (p *Passenger) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *Passenger) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

// Orders returns a copy of the passenger's order list.
func (p *Passenger) Orders() []*Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Order, len(p.orders))
	copy(out, p.orders)
	return out
}

func (p *Passenger) addOrder(o *Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, o)
}

func (p *Passenger) removeOrder(o *Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, held := range p.orders {
		if held == o {
			p.orders = append(p.orders[:i], p.orders[i+1:]...)
			return
		}
	}
}
