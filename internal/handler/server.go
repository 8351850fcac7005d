// Package handler implements the HTTP handlers for the departure board API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, board.go, export.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/departure-board/internal/domain"
)

// TripServicer defines the schedule operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the store or the engine.
type TripServicer interface {
	ListVisible(ctx context.Context, now time.Time) ([]domain.Trip, error)
	ListAll(ctx context.Context, now time.Time) ([]domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Create(ctx context.Context, now time.Time, tod domain.TimeOfDay, destination string) (domain.Trip, error)
	Reschedule(ctx context.Context, now time.Time, id uuid.UUID, tod domain.TimeOfDay, destination string) (domain.Trip, error)
	Retire(ctx context.Context, now time.Time, id uuid.UUID) (domain.Trip, error)
	Reactivate(ctx context.Context, now time.Time, id uuid.UUID) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResetAll(ctx context.Context, now time.Time) ([]domain.Trip, error)
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, now time.Time) ([]domain.ExportRow, error)
}

// Server serves every API endpoint.
// Wire it in main.go by mounting Server.Handler.
type Server struct {
	trips        TripServicer
	export       ExportServicer
	destinations []string
	now          func() time.Time
}

// NewServer constructs the Server with all its dependencies.
// destinations is the allow-list offered to operators; an empty list accepts
// any destination. now supplies the request clock; nil means time.Now.
func NewServer(trips TripServicer, export ExportServicer, destinations []string, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{
		trips:        trips,
		export:       export,
		destinations: destinations,
		now:          now,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Handler returns the chi router for every API route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Post("/reset", s.ResetTrips)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/retire", s.RetireTrip)
			r.Post("/reactivate", s.ReactivateTrip)
		})
	})

	r.Get("/destinations", s.ListDestinations)
	r.Get("/statuses", s.ListStatuses)
	r.Get("/export", s.GetExport)

	return r
}

// allowedDestination reports whether dest is on the allow-list.
func (s *Server) allowedDestination(dest string) bool {
	if len(s.destinations) == 0 {
		return true
	}
	dest = strings.TrimSpace(dest)
	for _, d := range s.destinations {
		if d == dest {
			return true
		}
	}
	return false
}
