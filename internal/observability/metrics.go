package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the booking counters exported at /metrics.
type Metrics struct {
	SeatReservations prometheus.Counter
	SeatReleases     prometheus.Counter
	OrdersCreated    prometheus.Counter
	OrdersPaid       prometheus.Counter
	OrdersCancelled  prometheus.Counter
	FlightsGenerated prometheus.Counter
}

// NewMetrics registers the booking counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SeatReservations: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightledger_seat_reservations_total",
			Help: "Seats reserved across all flights.",
		}),
		SeatReleases: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightledger_seat_releases_total",
			Help: "Seats released by cancellation or removal.",
		}),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightledger_orders_created_total",
			Help: "Orders created.",
		}),
		OrdersPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightledger_orders_paid_total",
			Help: "Orders paid.",
		}),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightledger_orders_cancelled_total",
			Help: "Orders cancelled.",
		}),
		FlightsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightledger_flights_generated_total",
			Help: "Flight instances generated from daemons.",
		}),
	}
}
