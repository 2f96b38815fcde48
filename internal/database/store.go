package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avitran/flightledger/internal/booking"
)

// ErrEmpty is returned by LoadSnapshot when no snapshot has been saved yet.
var ErrEmpty = errors.New("no snapshot stored")

// Store persists ledger snapshots in Postgres. The ledger core never does
// I/O itself; the server saves a snapshot on shutdown and reloads it on
// boot.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pgx pool for the given URL.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the snapshot tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cities (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS passengers (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			document   TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS daemons (
			id             UUID PRIMARY KEY,
			name           TEXT NOT NULL,
			departure      TIMESTAMPTZ NOT NULL,
			arrival        TIMESTAMPTZ NOT NULL,
			origin_id      UUID NOT NULL,
			destination_id UUID NOT NULL,
			price          DOUBLE PRECISION NOT NULL,
			capacity       INT NOT NULL,
			distance       INT NOT NULL,
			period_days    INT NOT NULL,
			active         BOOLEAN NOT NULL,
			next_departure TIMESTAMPTZ NOT NULL,
			generated      INT NOT NULL,
			flight_ids     JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS flights (
			id             UUID PRIMARY KEY,
			daemon_id      UUID,
			name           TEXT NOT NULL,
			departure      TIMESTAMPTZ NOT NULL,
			arrival        TIMESTAMPTZ NOT NULL,
			origin_id      UUID,
			destination_id UUID,
			price          DOUBLE PRECISION NOT NULL,
			capacity       INT NOT NULL,
			distance       INT NOT NULL,
			seats          JSONB NOT NULL,
			status         TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS orders (
			id           UUID PRIMARY KEY,
			passenger_id UUID NOT NULL,
			flight_id    UUID,
			created_at   TIMESTAMPTZ NOT NULL,
			status       TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// SaveSnapshot replaces the stored graph with the given snapshot in one
// transaction.
func (s *Store) SaveSnapshot(ctx context.Context, snap booking.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"orders", "flights", "daemons", "passengers", "cities"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, c := range snap.Cities {
		_, err := tx.Exec(ctx, `INSERT INTO cities (id, name) VALUES ($1, $2)`, c.ID, c.Name)
		if err != nil {
			return fmt.Errorf("failed to insert city: %w", err)
		}
	}

	for _, p := range snap.Passengers {
		_, err := tx.Exec(ctx, `
			INSERT INTO passengers (id, name, document) VALUES ($1, $2, $3)
		`, p.ID, p.Name, p.Document)
		if err != nil {
			return fmt.Errorf("failed to insert passenger: %w", err)
		}
	}

	for _, d := range snap.Daemons {
		flightIDs, err := json.Marshal(d.FlightIDs)
		if err != nil {
			return fmt.Errorf("failed to encode flight ids: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO daemons (id, name, departure, arrival, origin_id, destination_id,
			                     price, capacity, distance, period_days, active,
			                     next_departure, generated, flight_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, d.ID, d.Name, d.Departure, d.Arrival, d.OriginID, d.DestinationID,
			d.Price, d.Capacity, d.Distance, d.PeriodDays, d.Active,
			d.NextDeparture, d.Generated, flightIDs)
		if err != nil {
			return fmt.Errorf("failed to insert daemon: %w", err)
		}
	}

	for _, f := range snap.Flights {
		seats, err := json.Marshal(f.Seats)
		if err != nil {
			return fmt.Errorf("failed to encode seat map: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO flights (id, daemon_id, name, departure, arrival, origin_id,
			                     destination_id, price, capacity, distance, seats, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, f.ID, nullableID(f.DaemonID), f.Name, f.Departure, f.Arrival,
			nullableID(f.OriginID), nullableID(f.DestinationID),
			f.Price, f.Capacity, f.Distance, seats, string(f.Status))
		if err != nil {
			return fmt.Errorf("failed to insert flight: %w", err)
		}
	}

	for _, o := range snap.Orders {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, passenger_id, flight_id, created_at, status)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, o.PassengerID, nullableID(o.FlightID), o.CreatedAt, string(o.Status))
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// LoadSnapshot reads the stored graph. ErrEmpty means nothing was ever
// saved.
func (s *Store) LoadSnapshot(ctx context.Context) (*booking.Snapshot, error) {
	var snap booking.Snapshot

	rows, err := s.pool.Query(ctx, `SELECT id, name FROM cities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c booking.CityRecord
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		snap.Cities = append(snap.Cities, c)
	}
	rows.Close()

	rows, err = s.pool.Query(ctx, `SELECT id, name, document FROM passengers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query passengers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p booking.PassengerRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Document); err != nil {
			return nil, fmt.Errorf("failed to scan passenger: %w", err)
		}
		snap.Passengers = append(snap.Passengers, p)
	}
	rows.Close()

	rows, err = s.pool.Query(ctx, `
		SELECT id, name, departure, arrival, origin_id, destination_id, price,
		       capacity, distance, period_days, active, next_departure, generated, flight_ids
		FROM daemons ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query daemons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d booking.DaemonRecord
		var flightIDs []byte
		err := rows.Scan(&d.ID, &d.Name, &d.Departure, &d.Arrival, &d.OriginID,
			&d.DestinationID, &d.Price, &d.Capacity, &d.Distance, &d.PeriodDays,
			&d.Active, &d.NextDeparture, &d.Generated, &flightIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daemon: %w", err)
		}
		if err := json.Unmarshal(flightIDs, &d.FlightIDs); err != nil {
			return nil, fmt.Errorf("failed to decode flight ids: %w", err)
		}
		snap.Daemons = append(snap.Daemons, d)
	}
	rows.Close()

	rows, err = s.pool.Query(ctx, `
		SELECT id, daemon_id, name, departure, arrival, origin_id, destination_id,
		       price, capacity, distance, seats, status
		FROM flights ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f booking.FlightRecord
		var daemonID, originID, destinationID *uuid.UUID
		var seats []byte
		var status string
		err := rows.Scan(&f.ID, &daemonID, &f.Name, &f.Departure, &f.Arrival,
			&originID, &destinationID, &f.Price, &f.Capacity, &f.Distance, &seats, &status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		f.DaemonID = derefID(daemonID)
		f.OriginID = derefID(originID)
		f.DestinationID = derefID(destinationID)
		f.Status = booking.FlightStatus(status)
		if err := json.Unmarshal(seats, &f.Seats); err != nil {
			return nil, fmt.Errorf("failed to decode seat map: %w", err)
		}
		snap.Flights = append(snap.Flights, f)
	}
	rows.Close()

	rows, err = s.pool.Query(ctx, `
		SELECT id, passenger_id, flight_id, created_at, status FROM orders ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o booking.OrderRecord
		var flightID *uuid.UUID
		var status string
		if err := rows.Scan(&o.ID, &o.PassengerID, &flightID, &o.CreatedAt, &status); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.FlightID = derefID(flightID)
		o.Status = booking.OrderStatus(status)
		snap.Orders = append(snap.Orders, o)
	}
	rows.Close()

	if len(snap.Cities) == 0 && len(snap.Passengers) == 0 && len(snap.Flights) == 0 &&
		len(snap.Daemons) == 0 && len(snap.Orders) == 0 {
		return nil, ErrEmpty
	}
	return &snap, nil
}

func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
