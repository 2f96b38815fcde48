package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/avitran/flightledger/internal/booking"
	"github.com/avitran/flightledger/internal/config"
	"github.com/avitran/flightledger/internal/database"
	"github.com/avitran/flightledger/internal/handlers"
	"github.com/avitran/flightledger/internal/observability"
	"github.com/avitran/flightledger/internal/router"
	"github.com/avitran/flightledger/internal/scheduler"
	"github.com/avitran/flightledger/internal/service"
	"github.com/avitran/flightledger/internal/websocket"
)

func main() {
	boot := zerolog.New(os.Stderr)
	cfg, err := config.New()
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx := context.Background()

	// Durable snapshots are optional; without a database URL the ledger
	// lives in memory only.
	ledger := booking.NewLedger()
	var store *database.Store
	if cfg.Postgres.URL != "" {
		pool, err := database.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		store = database.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}

		snap, err := store.LoadSnapshot(ctx)
		switch {
		case errors.Is(err, database.ErrEmpty):
			log.Info().Msg("no stored snapshot, starting empty")
		case err != nil:
			log.Fatal().Err(err).Msg("failed to load snapshot")
		default:
			ledger, err = booking.RestoreLedger(*snap)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to restore ledger")
			}
			log.Info().
				Int("flights", len(snap.Flights)).
				Int("orders", len(snap.Orders)).
				Msg("ledger restored from snapshot")
		}
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	hub := websocket.NewHub(log)
	go hub.Run()

	bookingService := service.NewBookingService(ledger, hub, metrics, log)
	h := handlers.NewHandler(bookingService)
	r := router.SetupRouter(h, hub)

	gen := scheduler.NewGenerator(ledger, cfg.Generator.Schedule, cfg.Generator.Horizon, metrics, log)
	if err := gen.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start flight generator")
	}
	defer gen.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTP.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	if store != nil {
		if err := store.SaveSnapshot(shutdownCtx, ledger.Snapshot()); err != nil {
			log.Error().Err(err).Msg("failed to save snapshot")
		} else {
			log.Info().Msg("snapshot saved")
		}
	}

	log.Info().Msg("server stopped")
}
