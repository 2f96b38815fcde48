package scheduler

import (
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"

	"github.com/avitran/flightledger/internal/booking"
	"github.com/avitran/flightledger/internal/observability"
)

// Generator materializes recurring flight instances from the ledger's
// active daemons on a cron cadence. Each tick generates every occurrence
// departing within the configured horizon; instances come up UNPUBLISHED
// and fully initialized, so they are never visible half-built.
type Generator struct {
	ledger   *booking.Ledger
	horizon  time.Duration
	schedule string
	metrics  *observability.Metrics // optional
	log      zerolog.Logger
	cron     *cron.Cron
}

// NewGenerator creates a generator. schedule is a cron expression (for
// example "@every 1h"); horizon is how far ahead of now instances are
// materialized.
func NewGenerator(ledger *booking.Ledger, schedule string, horizon time.Duration, metrics *observability.Metrics, log zerolog.Logger) *Generator {
	return &Generator{
		ledger:   ledger,
		horizon:  horizon,
		schedule: schedule,
		metrics:  metrics,
		log:      log,
	}
}

// Start runs an immediate generation pass and then ticks on the cron
// schedule until Stop is called.
func (g *Generator) Start() error {
	g.Run()

	c := cron.New()
	if err := c.AddFunc(g.schedule, g.Run); err != nil {
		return err
	}
	c.Start()
	g.cron = c
	return nil
}

// Stop halts the cron loop. A pass already running finishes on its own.
func (g *Generator) Stop() {
	if g.cron != nil {
		g.cron.Stop()
	}
}

// Run executes one generation pass.
func (g *Generator) Run() {
	generated := g.ledger.GenerateDue(time.Now().Add(g.horizon))
	if len(generated) == 0 {
		return
	}
	if g.metrics != nil {
		g.metrics.FlightsGenerated.Add(float64(len(generated)))
	}
	for _, f := range generated {
		g.log.Info().
			Stringer("flight", f.ID()).
			Stringer("daemon", f.DaemonID()).
			Time("departure", f.Departure()).
			Msg("flight instance generated")
	}
}
