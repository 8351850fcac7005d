package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/departure-board/internal/domain"
	"github.com/pkordes/departure-board/internal/repo"
	"github.com/pkordes/departure-board/internal/schedule"
	"github.com/pkordes/departure-board/internal/service"
	"github.com/pkordes/departure-board/testutil"
)

// newPgEngine wires the engine to Postgres through a per-test transaction;
// every InTx becomes a savepoint that is discarded with the test.
func newPgEngine(t *testing.T) *service.TripService {
	t.Helper()
	tx := testutil.NewTx(t)
	return service.NewTripService(repo.NewTransactor(tx, time.UTC), schedule.DefaultWindows(), nil, quietLog)
}

func TestTripService_Postgres_Lifecycle(t *testing.T) {
	svc := newPgEngine(t)
	ctx := context.Background()

	trip, err := svc.Create(ctx, yesterday(8, 0), tod(10, 0), "AWC")
	require.NoError(t, err)

	_, err = svc.Create(ctx, yesterday(8, 0), tod(10, 0), "OSTOMY")
	require.ErrorIs(t, err, domain.ErrConflict)

	require.Equal(t, domain.StatusInTransit, statusAt(t, svc, trip.ID, yesterday(10, 3)).Status)
	finished := statusAt(t, svc, trip.ID, yesterday(10, 6))
	require.Equal(t, domain.StatusFinished, finished.Status)
	require.True(t, finished.Hidden)

	// First read of the next day resets the board.
	visible, err := svc.ListVisible(ctx, today(7, 0))
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, domain.StatusWaiting, visible[0].Status)
	assert.True(t, visible[0].DepartureAt.Equal(today(10, 0)))
	assert.True(t, visible[0].LastUpdated.Equal(today(7, 0)))

	retired, err := svc.Retire(ctx, today(7, 5), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOutOfService, retired.Status)
	assert.Equal(t, domain.StatusOutOfService, statusAt(t, svc, trip.ID, today(10, 3)).Status)

	reactivated, err := svc.Reactivate(ctx, today(12, 0), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, reactivated.Status)
	assert.True(t, reactivated.Hidden)

	require.NoError(t, svc.Delete(ctx, trip.ID))
	assert.ErrorIs(t, svc.Delete(ctx, trip.ID), domain.ErrNotFound)
}
