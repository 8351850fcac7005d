package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/departure-board/internal/domain"
	"github.com/pkordes/departure-board/internal/repo"
	"github.com/pkordes/departure-board/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create         func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	getByTimeOfDay func(ctx context.Context, tod domain.TimeOfDay) (domain.Trip, error)
	list           func(ctx context.Context) ([]domain.Trip, error)
	update         func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	updateMany     func(ctx context.Context, trips []domain.Trip) error
	delete         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) GetByTimeOfDay(ctx context.Context, tod domain.TimeOfDay) (domain.Trip, error) {
	return m.getByTimeOfDay(ctx, tod)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) UpdateMany(ctx context.Context, trips []domain.Trip) error {
	return m.updateMany(ctx, trips)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockTransactor hands its repo straight to fn, with no transaction semantics.
type mockTransactor struct {
	repo *mockTripRepo
}

func (m mockTransactor) InTx(_ context.Context, fn func(repo.TripRepo) error) error {
	return fn(m.repo)
}

// compile-time checks.
var (
	_ repo.TripRepo   = (*mockTripRepo)(nil)
	_ repo.Transactor = mockTransactor{}
)

// transition is one recorded status change.
type transition struct {
	from, to domain.Status
}

// fakeRecorder captures engine events for assertions.
type fakeRecorder struct {
	mu          sync.Mutex
	transitions []transition
	rollovers   []int
	resets      []int
	counts      map[domain.Status]int
	reconciles  int
}

var _ service.Recorder = (*fakeRecorder)(nil)

func (f *fakeRecorder) ObserveReconcile(time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconciles++
}
func (f *fakeRecorder) StatusTransition(from, to domain.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, transition{from, to})
}
func (f *fakeRecorder) DayRollover(trips int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollovers = append(f.rollovers, trips)
}
func (f *fakeRecorder) Reset(trips int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, trips)
}
func (f *fakeRecorder) TripsByStatus(counts map[domain.Status]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = counts
}
