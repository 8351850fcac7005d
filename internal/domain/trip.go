// Package domain contains the core data types for the departure board.
// This package has no internal dependencies and is imported by every other
// internal package (schedule, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxDestinationLength is the longest destination the store accepts.
const MaxDestinationLength = 100

// Trip is a single scheduled departure.
// DepartureAt carries today's date plus the trip's hour:minute; the date part
// is re-anchored whenever the board rolls over to a new day.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	DepartureAt time.Time `json:"departure_at"`
	Destination string    `json:"destination"`
	Status      Status    `json:"status"`
	Hidden      bool      `json:"hidden"`
	LastUpdated time.Time `json:"last_updated"` // used to detect day rollover
}

// TimeOfDay returns the hour:minute slot the trip occupies.
func (t Trip) TimeOfDay() TimeOfDay {
	return TimeOfDayOf(t.DepartureAt)
}
