package schedule_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/departure-board/internal/domain"
	"github.com/pkordes/departure-board/internal/schedule"
)

// at returns 2025-08-13 hh:mm in UTC.
func at(hh, mm int) time.Time {
	return time.Date(2025, 8, 13, hh, mm, 0, 0, time.UTC)
}

// ---- Reconcile -------------------------------------------------------------

func TestReconcile_Windows(t *testing.T) {
	w := schedule.DefaultWindows()
	departure := at(10, 0)

	tests := []struct {
		name    string
		current domain.Status
		now     time.Time
		want    domain.Status
	}{
		{"well before boarding", domain.StatusWaiting, at(9, 30), domain.StatusWaiting},
		{"one minute before boarding", domain.StatusWaiting, at(9, 49), domain.StatusWaiting},
		{"boarding opens", domain.StatusWaiting, at(9, 50), domain.StatusBoarding},
		{"boarding", domain.StatusWaiting, at(9, 55), domain.StatusBoarding},
		{"departure instant", domain.StatusBoarding, at(10, 0), domain.StatusInTransit},
		{"in transit", domain.StatusBoarding, at(10, 3), domain.StatusInTransit},
		{"transit window end is inclusive", domain.StatusBoarding, at(10, 5), domain.StatusInTransit},
		{"finished from in transit", domain.StatusInTransit, at(10, 6), domain.StatusFinished},
		{"finished stays finished", domain.StatusFinished, at(11, 0), domain.StatusFinished},
		{"boarding trip discovered late is left alone", domain.StatusBoarding, at(10, 6), domain.StatusBoarding},
		{"waiting trip discovered late is left alone", domain.StatusWaiting, at(12, 0), domain.StatusWaiting},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := w.Reconcile(tc.current, departure, tc.now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReconcile_OutOfServiceIsNeverTouched(t *testing.T) {
	w := schedule.DefaultWindows()
	departure := at(10, 0)

	for _, now := range []time.Time{at(0, 0), at(9, 55), at(10, 3), at(10, 6), at(23, 59)} {
		got := w.Reconcile(domain.StatusOutOfService, departure, now)
		assert.Equal(t, domain.StatusOutOfService, got, "now=%s", now.Format("15:04"))
	}
}

func TestReconcile_WindowsAreContiguousOverTheDay(t *testing.T) {
	w := schedule.DefaultWindows()
	departure := at(10, 0)

	// Walk the whole day minute by minute, feeding each result back in as the
	// current status, the way repeated reads would.
	current := domain.StatusWaiting
	var seen []domain.Status
	for now := at(0, 0); now.Before(at(0, 0).Add(24 * time.Hour)); now = now.Add(time.Minute) {
		current = w.Reconcile(current, departure, now)
		require.Contains(t, []domain.Status{
			domain.StatusWaiting, domain.StatusBoarding, domain.StatusInTransit, domain.StatusFinished,
		}, current)
		if len(seen) == 0 || seen[len(seen)-1] != current {
			seen = append(seen, current)
		}
	}

	assert.Equal(t, []domain.Status{
		domain.StatusWaiting, domain.StatusBoarding, domain.StatusInTransit, domain.StatusFinished,
	}, seen)
}

func TestReconcile_CustomWindows(t *testing.T) {
	w := schedule.Windows{Transit: 20 * time.Minute, BoardingLead: 30 * time.Minute}
	departure := at(10, 0)

	assert.Equal(t, domain.StatusBoarding, w.Reconcile(domain.StatusWaiting, departure, at(9, 30)))
	assert.Equal(t, domain.StatusInTransit, w.Reconcile(domain.StatusBoarding, departure, at(10, 20)))
	assert.Equal(t, domain.StatusFinished, w.Reconcile(domain.StatusInTransit, departure, at(10, 21)))
}

// ---- StatusAt --------------------------------------------------------------

func TestStatusAt(t *testing.T) {
	w := schedule.DefaultWindows()
	departure := at(10, 0)

	assert.Equal(t, domain.StatusWaiting, w.StatusAt(departure, at(9, 30)))
	assert.Equal(t, domain.StatusBoarding, w.StatusAt(departure, at(9, 55)))
	assert.Equal(t, domain.StatusInTransit, w.StatusAt(departure, at(10, 3)))
	assert.Equal(t, domain.StatusInTransit, w.StatusAt(departure, at(10, 5)))
	// Unlike Reconcile, a long-past departure goes straight to Finished.
	assert.Equal(t, domain.StatusFinished, w.StatusAt(departure, at(12, 0)))
}

// ---- IsStale ---------------------------------------------------------------

func TestIsStale(t *testing.T) {
	now := at(0, 5)

	assert.True(t, schedule.IsStale(now.Add(-10*time.Minute), now), "yesterday 23:55")
	assert.True(t, schedule.IsStale(now.AddDate(0, 0, -3), now), "three days ago")
	assert.False(t, schedule.IsStale(at(0, 0), now), "midnight today")
	assert.False(t, schedule.IsStale(now, now), "same instant")
	assert.False(t, schedule.IsStale(now.Add(time.Hour), now), "later today")
}

func TestIsStale_ComparesInNowsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2025, 8, 13, 1, 0, 0, 0, loc) // 06:00 UTC

	// 04:00 UTC is 23:00 the previous day in loc.
	lastUpdated := time.Date(2025, 8, 13, 4, 0, 0, 0, time.UTC)

	assert.True(t, schedule.IsStale(lastUpdated, now))
}

// ---- Reset -----------------------------------------------------------------

func TestReset(t *testing.T) {
	yesterday := at(14, 30).AddDate(0, 0, -1)
	trip := domain.Trip{
		ID:          uuid.New(),
		DepartureAt: yesterday,
		Destination: "AWC",
		Status:      domain.StatusFinished,
		Hidden:      true,
		LastUpdated: yesterday,
	}
	now := at(0, 1)

	got := schedule.Reset(trip, now)

	assert.Equal(t, trip.ID, got.ID)
	assert.Equal(t, "AWC", got.Destination)
	assert.Equal(t, domain.StatusWaiting, got.Status)
	assert.False(t, got.Hidden)
	assert.True(t, got.DepartureAt.Equal(at(14, 30)), "re-anchored to today, got %s", got.DepartureAt)
	assert.True(t, got.LastUpdated.Equal(now))
}
