package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// trip does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty destination, malformed departure time).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a trip already occupies the requested
// departure time of day. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
