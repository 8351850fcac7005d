package domain

import "fmt"

// Status is the operational state of a trip. The numeric values are the
// codes persisted in the trips.status column and must not be reordered.
type Status int

const (
	StatusBoarding     Status = 0
	StatusInTransit    Status = 1
	StatusFinished     Status = 2
	StatusWaiting      Status = 3
	StatusOutOfService Status = 4
)

// Statuses lists every known status in display order.
var Statuses = []Status{
	StatusWaiting,
	StatusBoarding,
	StatusInTransit,
	StatusFinished,
	StatusOutOfService,
}

var statusNames = map[Status]string{
	StatusBoarding:     "boarding",
	StatusInTransit:    "in_transit",
	StatusFinished:     "finished",
	StatusWaiting:      "waiting",
	StatusOutOfService: "out_of_service",
}

// String returns the wire name of the status, or "unknown".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// MarshalText encodes the status by name so JSON carries "in_transit"
// rather than a bare integer.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus looks up a status by its wire name.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown status %q", ErrValidation, name)
}
