// Package memory provides in-process implementations of the repo interfaces.
// They back the STORE=memory development mode and the engine's unit tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/departure-board/internal/domain"
	"github.com/pkordes/departure-board/internal/repo"
)

// TripStore keeps trips in a map guarded by a RWMutex, plus a secondary index
// on time of day that plays the role of the Postgres unique index.
//
// TripStore is both a repo.TripRepo and a repo.Transactor. InTx serializes
// units of work and restores a snapshot if the unit fails, so callers see the
// same all-or-nothing behaviour as the Postgres transactor.
type TripStore struct {
	txMu sync.Mutex

	mu    sync.RWMutex
	trips map[uuid.UUID]domain.Trip
	slots map[domain.TimeOfDay]uuid.UUID
}

// NewTripStore returns an empty store.
func NewTripStore() *TripStore {
	return &TripStore{
		trips: make(map[uuid.UUID]domain.Trip),
		slots: make(map[domain.TimeOfDay]uuid.UUID),
	}
}

var (
	_ repo.TripRepo   = (*TripStore)(nil)
	_ repo.Transactor = (*TripStore)(nil)
)

// InTx runs fn with exclusive access to the store. If fn returns an error
// every change it made is discarded.
func (s *TripStore) InTx(ctx context.Context, fn func(repo.TripRepo) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory.TripStore.InTx: %w", err)
	}

	trips, slots := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(trips, slots)
		return fmt.Errorf("memory.TripStore.InTx: %w", err)
	}
	return nil
}

func (s *TripStore) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.slots[trip.TimeOfDay()]; taken {
		return domain.Trip{}, fmt.Errorf("memory.TripStore.Create: %w: departure time already taken", domain.ErrConflict)
	}

	trip.ID = uuid.New()
	s.trips[trip.ID] = trip
	s.slots[trip.TimeOfDay()] = trip.ID
	return trip, nil
}

func (s *TripStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trip, ok := s.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("memory.TripStore.GetByID: %w", domain.ErrNotFound)
	}
	return trip, nil
}

func (s *TripStore) GetByTimeOfDay(ctx context.Context, tod domain.TimeOfDay) (domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slots[tod]
	if !ok {
		return domain.Trip{}, fmt.Errorf("memory.TripStore.GetByTimeOfDay: %w", domain.ErrNotFound)
	}
	return s.trips[id], nil
}

// List returns every trip ordered by departure time, earliest first.
func (s *TripStore) List(ctx context.Context) ([]domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trips := make([]domain.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		trips = append(trips, t)
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].DepartureAt.Before(trips[j].DepartureAt)
	})
	return trips, nil
}

func (s *TripStore) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.replace(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("memory.TripStore.Update: %w", err)
	}
	return trip, nil
}

// UpdateMany applies every replacement or none of them.
func (s *TripStore) UpdateMany(ctx context.Context, trips []domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range trips {
		if _, ok := s.trips[t.ID]; !ok {
			return fmt.Errorf("memory.TripStore.UpdateMany: %s: %w", t.ID, domain.ErrNotFound)
		}
	}
	trips0, slots0 := s.copyLocked()
	for _, t := range trips {
		if err := s.replace(t); err != nil {
			s.trips, s.slots = trips0, slots0
			return fmt.Errorf("memory.TripStore.UpdateMany: %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *TripStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip, ok := s.trips[id]
	if !ok {
		return fmt.Errorf("memory.TripStore.Delete: %w", domain.ErrNotFound)
	}
	delete(s.trips, id)
	delete(s.slots, trip.TimeOfDay())
	return nil
}

// replace swaps in trip and moves its slot index entry. Caller holds s.mu.
func (s *TripStore) replace(trip domain.Trip) error {
	old, ok := s.trips[trip.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if owner, taken := s.slots[trip.TimeOfDay()]; taken && owner != trip.ID {
		return fmt.Errorf("%w: departure time already taken", domain.ErrConflict)
	}
	delete(s.slots, old.TimeOfDay())
	s.trips[trip.ID] = trip
	s.slots[trip.TimeOfDay()] = trip.ID
	return nil
}

func (s *TripStore) snapshot() (map[uuid.UUID]domain.Trip, map[domain.TimeOfDay]uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *TripStore) copyLocked() (map[uuid.UUID]domain.Trip, map[domain.TimeOfDay]uuid.UUID) {
	trips := make(map[uuid.UUID]domain.Trip, len(s.trips))
	for k, v := range s.trips {
		trips[k] = v
	}
	slots := make(map[domain.TimeOfDay]uuid.UUID, len(s.slots))
	for k, v := range s.slots {
		slots[k] = v
	}
	return trips, slots
}

func (s *TripStore) restore(trips map[uuid.UUID]domain.Trip, slots map[domain.TimeOfDay]uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips, s.slots = trips, slots
}
