package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is an hour:minute slot, independent of any date.
// Two trips can never share a TimeOfDay.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// timeOfDayLayouts are tried in order by ParseTimeOfDay. Full timestamps are
// accepted because form collaborators often post a datetime-local value.
var timeOfDayLayouts = []string{
	"15:04",
	"15:04:05",
	time.RFC3339,
	"2006-01-02T15:04",
}

// ParseTimeOfDay parses "HH:MM", "HH:MM:SS" or a timestamp, keeping only the
// hour and minute as written. A timestamp offset is not applied; use
// ParseTimeOfDayIn to read the slot on the board's clock.
// Returns domain.ErrValidation for anything else.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	return ParseTimeOfDayIn(s, nil)
}

// ParseTimeOfDayIn is ParseTimeOfDay for a board running in loc: a
// timestamp carrying an explicit offset is converted to loc before its hour
// and minute are taken. Bare clock times and timestamps without an offset are
// already local. A nil loc keeps the value as written.
func ParseTimeOfDayIn(s string, loc *time.Location) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeOfDay{}, fmt.Errorf("%w: departure time is required", ErrValidation)
	}
	for _, layout := range timeOfDayLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == time.RFC3339 && loc != nil {
			t = t.In(loc)
		}
		return TimeOfDayOf(t), nil
	}
	return TimeOfDay{}, fmt.Errorf("%w: departure time %q must be HH:MM", ErrValidation, s)
}

// TimeOfDayOf extracts the hour:minute of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Valid reports whether the slot lies within a 24-hour day.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// On anchors the slot to the calendar day of day, in day's location.
// Seconds are always zero so slots compare exactly.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// String formats the slot as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
