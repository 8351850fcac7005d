// Package metrics exposes the schedule engine's activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/departure-board/internal/domain"
)

// Collector owns a private registry so tests can create as many as they like
// without tripping over the global default registry.
type Collector struct {
	reg *prometheus.Registry

	ReconcileDuration prometheus.Histogram
	Transitions       *prometheus.CounterVec // from, to
	DayRollovers      prometheus.Counter
	Resets            prometheus.Counter
	Trips             *prometheus.GaugeVec // status

	TransitWindow prometheus.Gauge // seconds
	BoardingLead  prometheus.Gauge // seconds
}

// NewCollector builds and registers every metric. The window lengths are
// published once as static gauges.
func NewCollector(transit, boardingLead time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "departures_reconcile_duration_seconds",
			Help:    "Duration of a board reconciliation, store round-trips included.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "departures_status_transitions_total",
			Help: "Trip status changes, by previous and new status.",
		}, []string{"from", "to"}),
		DayRollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "departures_day_rollovers_total",
			Help: "Automatic resets triggered by the first read of a new day.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "departures_resets_total",
			Help: "Manual resets of every trip.",
		}),
		Trips: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "departures_trips",
			Help: "Trips on the board by status, as of the last reconciliation.",
		}, []string{"status"}),
		TransitWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "departures_transit_window_seconds",
			Help: "Length of the in-transit window after departure.",
		}),
		BoardingLead: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "departures_boarding_lead_seconds",
			Help: "Length of the boarding window before departure.",
		}),
	}

	reg.MustRegister(
		c.ReconcileDuration, c.Transitions, c.DayRollovers, c.Resets, c.Trips,
		c.TransitWindow, c.BoardingLead,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.TransitWindow.Set(transit.Seconds())
	c.BoardingLead.Set(boardingLead.Seconds())

	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// ObserveReconcile records how long one reconciliation took.
func (c *Collector) ObserveReconcile(d time.Duration) {
	c.ReconcileDuration.Observe(d.Seconds())
}

// StatusTransition counts one status change.
func (c *Collector) StatusTransition(from, to domain.Status) {
	c.Transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// DayRollover counts one automatic reset.
func (c *Collector) DayRollover(int) {
	c.DayRollovers.Inc()
}

// Reset counts one manual reset.
func (c *Collector) Reset(int) {
	c.Resets.Inc()
}

// TripsByStatus replaces the per-status gauge values.
func (c *Collector) TripsByStatus(counts map[domain.Status]int) {
	for status, n := range counts {
		c.Trips.WithLabelValues(status.String()).Set(float64(n))
	}
}
