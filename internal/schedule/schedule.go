// Package schedule holds the pure time arithmetic behind the departure board:
// which status a trip should be in at a given instant, and when the board has
// rolled over into a new day. Nothing here touches storage or the wall clock;
// every function takes "now" explicitly.
package schedule

import (
	"time"

	"github.com/pkordes/departure-board/internal/domain"
)

// Default window lengths.
const (
	DefaultTransit      = 5 * time.Minute
	DefaultBoardingLead = 10 * time.Minute
)

// Windows describes the time windows around a departure T:
//
//	[T-BoardingLead, T)   boarding
//	[T, T+Transit]        in transit
//	(T+Transit, ...)      finished
//
// Anything before T-BoardingLead is waiting. The windows are contiguous and
// do not overlap.
type Windows struct {
	Transit      time.Duration
	BoardingLead time.Duration
}

// DefaultWindows returns the 5 minute transit / 10 minute boarding windows.
func DefaultWindows() Windows {
	return Windows{Transit: DefaultTransit, BoardingLead: DefaultBoardingLead}
}

// Reconcile returns the status lazy reconciliation assigns to a trip that is
// currently in status current, departing at departure, observed at now.
//
// Past the transit window a trip only becomes Finished when it was last seen
// InTransit; any other status is left as it was. A trip that nobody looked at
// during its transit window therefore never auto-finishes. StatusAt is the
// unrestricted rule used by reactivation.
//
// OutOfService is a manual override and is always returned unchanged.
func (w Windows) Reconcile(current domain.Status, departure, now time.Time) domain.Status {
	if current == domain.StatusOutOfService {
		return current
	}
	if now.After(departure.Add(w.Transit)) {
		if current == domain.StatusInTransit {
			return domain.StatusFinished
		}
		return current
	}
	return w.beforeEnd(departure, now)
}

// StatusAt computes the status a trip departing at departure has at now,
// straight from the windows. A long-past departure yields Finished directly.
func (w Windows) StatusAt(departure, now time.Time) domain.Status {
	if now.After(departure.Add(w.Transit)) {
		return domain.StatusFinished
	}
	return w.beforeEnd(departure, now)
}

// beforeEnd covers the three windows that end at T+Transit inclusive.
func (w Windows) beforeEnd(departure, now time.Time) domain.Status {
	switch {
	case !now.Before(departure):
		return domain.StatusInTransit
	case !now.Before(departure.Add(-w.BoardingLead)):
		return domain.StatusBoarding
	default:
		return domain.StatusWaiting
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsStale reports whether lastUpdated falls on a calendar day strictly before
// now's day. Both instants are compared in now's location.
func IsStale(lastUpdated, now time.Time) bool {
	return lastUpdated.In(now.Location()).Before(StartOfDay(now))
}

// Reset re-arms a trip for the day of now: Waiting, visible, departure
// re-anchored to now's date with the same hour:minute, stamped with now.
func Reset(t domain.Trip, now time.Time) domain.Trip {
	t.Status = domain.StatusWaiting
	t.Hidden = false
	t.DepartureAt = t.TimeOfDay().On(now)
	t.LastUpdated = now
	return t
}
