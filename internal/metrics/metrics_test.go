package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/departure-board/internal/domain"
	"github.com/pkordes/departure-board/internal/metrics"
	"github.com/pkordes/departure-board/internal/service"
)

// compile-time check: the collector plugs straight into the engine.
var _ service.Recorder = (*metrics.Collector)(nil)

func TestCollector_StaticWindows(t *testing.T) {
	c := metrics.NewCollector(5*time.Minute, 10*time.Minute)

	assert.Equal(t, 300.0, testutil.ToFloat64(c.TransitWindow))
	assert.Equal(t, 600.0, testutil.ToFloat64(c.BoardingLead))
}

func TestCollector_StatusTransition(t *testing.T) {
	c := metrics.NewCollector(time.Minute, time.Minute)

	c.StatusTransition(domain.StatusWaiting, domain.StatusBoarding)
	c.StatusTransition(domain.StatusWaiting, domain.StatusBoarding)
	c.StatusTransition(domain.StatusInTransit, domain.StatusFinished)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Transitions.WithLabelValues("waiting", "boarding")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Transitions.WithLabelValues("in_transit", "finished")))
}

func TestCollector_RolloversAndResets(t *testing.T) {
	c := metrics.NewCollector(time.Minute, time.Minute)

	c.DayRollover(4)
	c.Reset(4)
	c.Reset(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.DayRollovers))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Resets))
}

func TestCollector_TripsByStatus(t *testing.T) {
	c := metrics.NewCollector(time.Minute, time.Minute)

	c.TripsByStatus(map[domain.Status]int{domain.StatusWaiting: 3, domain.StatusFinished: 1})
	c.TripsByStatus(map[domain.Status]int{domain.StatusWaiting: 2, domain.StatusFinished: 2})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Trips.WithLabelValues("waiting")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Trips.WithLabelValues("finished")))
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.NewCollector(time.Minute, time.Minute)
	c.ObserveReconcile(3 * time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "departures_reconcile_duration_seconds_count 1")
	assert.Contains(t, rec.Body.String(), "departures_transit_window_seconds 60")
}
