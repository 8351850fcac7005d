package domain

import "time"

// ExportRow is a single row in the board export: one row per trip, flattened
// for CSV. Status is the wire name and StatusLabel the display label.
type ExportRow struct {
	TripID        string
	DepartureTime string // "15:04"
	DepartureAt   time.Time
	Destination   string
	Status        string
	StatusLabel   string
	Hidden        bool
	LastUpdated   time.Time
}
