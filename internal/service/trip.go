// Package service contains the business logic for the departure board.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/departure-board/internal/domain"
	"github.com/pkordes/departure-board/internal/repo"
	"github.com/pkordes/departure-board/internal/schedule"
)

// Recorder receives the engine's observable events.
// *metrics.Collector satisfies it; nil disables recording.
type Recorder interface {
	ObserveReconcile(d time.Duration)
	StatusTransition(from, to domain.Status)
	DayRollover(trips int)
	Reset(trips int)
	TripsByStatus(counts map[domain.Status]int)
}

// TripService is the schedule engine. It derives each trip's status from the
// clock and persists the result. Every exported method takes "now" from the
// caller and runs inside a single store transaction.
//
// Reconciliation is lazy: nothing runs in the background. Listing the board
// first checks for a day rollover, then moves each trip through its windows.
type TripService struct {
	store   repo.Transactor
	windows schedule.Windows
	metrics Recorder
	log     *slog.Logger
}

// NewTripService constructs a TripService backed by store.
// rec and log may be nil.
func NewTripService(store repo.Transactor, windows schedule.Windows, rec Recorder, log *slog.Logger) *TripService {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &TripService{store: store, windows: windows, metrics: rec, log: log}
}

// ListVisible reconciles the board against now and returns the trips that
// are not hidden, ordered by departure time.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListVisible(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	trips, err := s.reconcile(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListVisible: %w", err)
	}

	visible := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if !t.Hidden {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

// ListAll reconciles the board against now and returns every trip,
// hidden ones included, ordered by departure time.
func (s *TripService) ListAll(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	trips, err := s.reconcile(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListAll: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// GetByID returns a single trip as stored, without reconciling it.
// Returns domain.ErrNotFound if no trip with that ID exists.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	err := s.store.InTx(ctx, func(r repo.TripRepo) error {
		var err error
		trip, err = r.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// Create schedules a new trip at tod, anchored to now's calendar day, in
// status Waiting and visible.
// Returns domain.ErrValidation for a bad destination or slot and
// domain.ErrConflict if another trip already departs at tod on any date.
func (s *TripService) Create(ctx context.Context, now time.Time, tod domain.TimeOfDay, destination string) (domain.Trip, error) {
	destination = strings.TrimSpace(destination)
	if err := validateTrip(tod, destination); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	trip := domain.Trip{
		DepartureAt: tod.On(now),
		Destination: destination,
		Status:      domain.StatusWaiting,
		Hidden:      false,
		LastUpdated: now,
	}

	var created domain.Trip
	err := s.store.InTx(ctx, func(r repo.TripRepo) error {
		if err := ensureSlotFree(ctx, r, tod, uuid.Nil); err != nil {
			return err
		}
		var err error
		// The store's own uniqueness check still guards the insert against a
		// concurrent writer that slipped in after the lookup.
		created, err = r.Create(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// Reschedule moves a trip to a new slot and destination. Unless the trip is
// out of service its status is recomputed for now with the direct window
// rule, the same way Reactivate does.
// Returns domain.ErrNotFound, domain.ErrConflict or domain.ErrValidation.
func (s *TripService) Reschedule(ctx context.Context, now time.Time, id uuid.UUID, tod domain.TimeOfDay, destination string) (domain.Trip, error) {
	destination = strings.TrimSpace(destination)
	if err := validateTrip(tod, destination); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Reschedule: %w", err)
	}

	var updated domain.Trip
	err := s.store.InTx(ctx, func(r repo.TripRepo) error {
		trip, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureSlotFree(ctx, r, tod, id); err != nil {
			return err
		}

		trip.DepartureAt = tod.On(now)
		trip.Destination = destination
		if trip.Status != domain.StatusOutOfService {
			s.applyStatusAt(&trip, now)
		}
		trip.LastUpdated = now

		updated, err = r.Update(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Reschedule: %w", err)
	}
	return updated, nil
}

// Retire forces a trip out of service. Reconciliation never touches an
// out-of-service trip; only Reactivate brings it back. Hidden is left as is.
// Returns domain.ErrNotFound if no trip with that ID exists.
func (s *TripService) Retire(ctx context.Context, now time.Time, id uuid.UUID) (domain.Trip, error) {
	var prev domain.Status
	updated, err := s.mutate(ctx, id, func(t *domain.Trip) {
		prev = t.Status
		t.Status = domain.StatusOutOfService
		t.LastUpdated = now
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Retire: %w", err)
	}
	if prev != domain.StatusOutOfService {
		s.metrics.StatusTransition(prev, domain.StatusOutOfService)
	}
	return updated, nil
}

// Reactivate puts a trip back under time control. The departure is
// re-anchored to now's day, since stamping LastUpdated hides the trip from
// the next rollover check. Its status is then computed directly from the
// windows at now, so a trip whose departure is long past becomes Finished
// (and hidden) without ever having been InTransit.
// Returns domain.ErrNotFound if no trip with that ID exists.
func (s *TripService) Reactivate(ctx context.Context, now time.Time, id uuid.UUID) (domain.Trip, error) {
	updated, err := s.mutate(ctx, id, func(t *domain.Trip) {
		t.DepartureAt = t.TimeOfDay().On(now)
		s.applyStatusAt(t, now)
		t.LastUpdated = now
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Reactivate: %w", err)
	}
	return updated, nil
}

// Delete removes a trip permanently.
// Returns domain.ErrNotFound if no trip with that ID exists.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.InTx(ctx, func(r repo.TripRepo) error {
		return r.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// ResetAll re-arms every trip for now's day: Waiting, visible, departure
// re-anchored to today with the same hour:minute. It is the manual
// counterpart of the automatic day rollover and returns the reset board.
func (s *TripService) ResetAll(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	var trips []domain.Trip
	err := s.store.InTx(ctx, func(r repo.TripRepo) error {
		var err error
		if trips, err = r.List(ctx); err != nil {
			return err
		}
		return s.resetTrips(ctx, r, trips, now)
	})
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ResetAll: %w", err)
	}

	s.metrics.Reset(len(trips))
	s.log.InfoContext(ctx, "trips reset", "trips", len(trips), "day", now.Format(time.DateOnly))
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// ---- reconciliation --------------------------------------------------------

// reconcile loads the board, applies the day rollover and the status windows,
// and persists whatever moved, all in one transaction.
func (s *TripService) reconcile(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveReconcile(time.Since(start)) }()

	var trips []domain.Trip
	err := s.store.InTx(ctx, func(r repo.TripRepo) error {
		var err error
		if trips, err = r.List(ctx); err != nil {
			return err
		}
		if err := s.reconcileDay(ctx, r, trips, now); err != nil {
			return err
		}
		return s.reconcileStatuses(ctx, r, trips, now)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TripsByStatus(countByStatus(trips))
	return trips, nil
}

// reconcileDay resets the whole board when any trip was last touched on an
// earlier calendar day than now. This is how the board notices midnight.
func (s *TripService) reconcileDay(ctx context.Context, r repo.TripRepo, trips []domain.Trip, now time.Time) error {
	stale := false
	for _, t := range trips {
		if schedule.IsStale(t.LastUpdated, now) {
			stale = true
			break
		}
	}
	if !stale {
		return nil
	}

	if err := s.resetTrips(ctx, r, trips, now); err != nil {
		return fmt.Errorf("day rollover: %w", err)
	}
	s.metrics.DayRollover(len(trips))
	s.log.InfoContext(ctx, "day rollover: trips reset", "trips", len(trips), "day", now.Format(time.DateOnly))
	return nil
}

// reconcileStatuses moves every trip that is not out of service to the
// status its windows give at now, and writes back only the trips that changed.
func (s *TripService) reconcileStatuses(ctx context.Context, r repo.TripRepo, trips []domain.Trip, now time.Time) error {
	var changed []domain.Trip
	for i := range trips {
		t := &trips[i]
		next := s.windows.Reconcile(t.Status, t.DepartureAt, now)
		if next == t.Status {
			continue
		}

		s.metrics.StatusTransition(t.Status, next)
		t.Status = next
		if next == domain.StatusFinished {
			t.Hidden = true
		}
		changed = append(changed, *t)
	}

	if len(changed) == 0 {
		return nil
	}
	return r.UpdateMany(ctx, changed)
}

// resetTrips applies schedule.Reset to trips in place, persists them, and
// restores departure order, which re-anchoring may have changed.
func (s *TripService) resetTrips(ctx context.Context, r repo.TripRepo, trips []domain.Trip, now time.Time) error {
	prev := make([]domain.Status, len(trips))
	for i := range trips {
		prev[i] = trips[i].Status
		trips[i] = schedule.Reset(trips[i], now)
	}
	if err := r.UpdateMany(ctx, trips); err != nil {
		return err
	}
	for i, t := range trips {
		if prev[i] != t.Status {
			s.metrics.StatusTransition(prev[i], t.Status)
		}
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].DepartureAt.Before(trips[j].DepartureAt)
	})
	return nil
}

// ---- helpers ---------------------------------------------------------------

// mutate loads a trip, applies fn, and writes it back in one transaction.
func (s *TripService) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Trip)) (domain.Trip, error) {
	var updated domain.Trip
	err := s.store.InTx(ctx, func(r repo.TripRepo) error {
		trip, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		fn(&trip)
		updated, err = r.Update(ctx, trip)
		return err
	})
	return updated, err
}

// applyStatusAt sets the status the windows give at now and hides the trip
// exactly when that status is Finished.
func (s *TripService) applyStatusAt(t *domain.Trip, now time.Time) {
	next := s.windows.StatusAt(t.DepartureAt, now)
	if next != t.Status {
		s.metrics.StatusTransition(t.Status, next)
	}
	t.Status = next
	t.Hidden = next == domain.StatusFinished
}

// ensureSlotFree returns domain.ErrConflict if a trip other than self already
// departs at tod.
func ensureSlotFree(ctx context.Context, r repo.TripRepo, tod domain.TimeOfDay, self uuid.UUID) error {
	existing, err := r.GetByTimeOfDay(ctx, tod)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == self:
		return nil
	default:
		return fmt.Errorf("%w: a trip already departs at %s", domain.ErrConflict, tod)
	}
}

// validateTrip enforces the record constraints common to Create and Reschedule.
//   - The slot must lie within a 24-hour day.
//   - Destination must be non-empty and at most domain.MaxDestinationLength characters.
//
// Membership in the destination allow-list is checked by the caller.
func validateTrip(tod domain.TimeOfDay, destination string) error {
	if !tod.Valid() {
		return fmt.Errorf("%w: departure time %s is out of range", domain.ErrValidation, tod)
	}
	if destination == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(destination) > domain.MaxDestinationLength {
		return fmt.Errorf("%w: destination must be at most %d characters", domain.ErrValidation, domain.MaxDestinationLength)
	}
	return nil
}

func countByStatus(trips []domain.Trip) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, st := range domain.Statuses {
		counts[st] = 0
	}
	for _, t := range trips {
		counts[t.Status]++
	}
	return counts
}

type nopRecorder struct{}

func (nopRecorder) ObserveReconcile(time.Duration)      {}
func (nopRecorder) StatusTransition(_, _ domain.Status) {}
func (nopRecorder) DayRollover(int)                     {}
func (nopRecorder) Reset(int)                           {}
func (nopRecorder) TripsByStatus(map[domain.Status]int) {}
