// Package repo contains all database access logic for the departure board.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/departure-board/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock or the memory store.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with its
	// store-generated id. Returns domain.ErrConflict if another trip already
	// occupies the same departure time of day.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetByTimeOfDay retrieves the trip departing at tod, ignoring the date.
	// Returns domain.ErrNotFound if the slot is free.
	GetByTimeOfDay(ctx context.Context, tod domain.TimeOfDay) (domain.Trip, error)

	// List returns all trips ordered by departure_at ascending.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites every mutable field of an existing trip and returns the
	// updated record. Returns domain.ErrNotFound if no trip with that ID exists
	// and domain.ErrConflict if the new slot is taken.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// UpdateMany overwrites a batch of trips. Returns domain.ErrNotFound if any
	// of them no longer exists.
	UpdateMany(ctx context.Context, trips []domain.Trip) error

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
//
// departure_at and last_updated are TIMESTAMP (without time zone) columns
// holding local wall-clock values. pgx writes the wall clock of whatever
// time.Time it is given and reads it back as UTC, so scanned values are
// re-read as wall clock in loc.
type pgTripRepo struct {
	db  db
	loc *time.Location
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool or a pgx.Tx; in tests pass a pgx.Tx for
// rollback isolation. loc is the board's single local clock; nil means time.Local.
func NewTripRepo(db db, loc *time.Location) TripRepo {
	if loc == nil {
		loc = time.Local
	}
	return &pgTripRepo{db: db, loc: loc}
}

const tripColumns = `id, departure_at, destination, status, hidden, last_updated`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (departure_at, destination, status, hidden, last_updated)
		VALUES (@departure_at, @destination, @status, @hidden, @last_updated)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := r.scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := r.scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByTimeOfDay matches on the HH24:MI rendering of departure_at, so the
// date part never takes part in the comparison.
func (r *pgTripRepo) GetByTimeOfDay(ctx context.Context, tod domain.TimeOfDay) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE to_char(departure_at, 'HH24:MI') = @tod
		LIMIT 1`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"tod": tod.String()})
	result, err := r.scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByTimeOfDay: %w", err)
	}
	return result, nil
}

// List returns all trips ordered by departure_at ascending (earliest first).
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		ORDER BY departure_at ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := r.scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}

	return trips, nil
}

const updateTripSQL = `
		UPDATE trips
		SET departure_at = @departure_at,
		    destination  = @destination,
		    status       = @status,
		    hidden       = @hidden,
		    last_updated = @last_updated
		WHERE id = @id`

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = updateTripSQL + `
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := r.scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", mapPgError(err))
	}
	return result, nil
}

// UpdateMany queues one UPDATE per trip in a single pgx.Batch so a
// reconciliation pass costs one round-trip regardless of how many trips moved.
func (r *pgTripRepo) UpdateMany(ctx context.Context, trips []domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range trips {
		batch.Queue(updateTripSQL, tripArgs(t))
	}

	br := r.db.SendBatch(ctx, batch)
	for _, t := range trips {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("repo.TripRepo.UpdateMany: %s: %w", t.ID, mapPgError(err))
		}
		if tag.RowsAffected() == 0 {
			_ = br.Close()
			return fmt.Errorf("repo.TripRepo.UpdateMany: %s: %w", t.ID, domain.ErrNotFound)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("repo.TripRepo.UpdateMany: close: %w", err)
	}
	return nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// tripArgs binds every column of t. Unused names are ignored by pgx.
func tripArgs(t domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":           t.ID,
		"departure_at": t.DepartureAt,
		"destination":  t.Destination,
		"status":       int16(t.Status),
		"hidden":       t.Hidden,
		"last_updated": t.LastUpdated,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID conversion and re-reads timestamps in r.loc.
func (r *pgTripRepo) scanTrip(s scanner) (domain.Trip, error) {
	var (
		t           domain.Trip
		id          pgtype.UUID
		status      int16
		departureAt pgtype.Timestamp
		lastUpdated pgtype.Timestamp
	)

	err := s.Scan(&id, &departureAt, &t.Destination, &status, &t.Hidden, &lastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Status = domain.Status(status)
	t.DepartureAt = wallClock(departureAt.Time, r.loc)
	t.LastUpdated = wallClock(lastUpdated.Time, r.loc)

	return t, nil
}

// wallClock keeps the calendar fields of t and attaches loc.
func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// mapPgError converts a unique violation (the time-of-day index) into
// domain.ErrConflict and passes every other error through.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: departure time already taken", domain.ErrConflict)
	}
	return err
}
