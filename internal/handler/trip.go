package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/departure-board/internal/domain"
)

// TripRequest is the body of POST /trips and PUT /trips/{id}.
type TripRequest struct {
	DepartureTime string `json:"departure_time"`
	Destination   string `json:"destination"`
}

// Trip is the JSON representation of a trip. Status carries the wire name and
// StatusCode the numeric code; Display is what the board renders.
type Trip struct {
	Id            openapi_types.UUID   `json:"id"`
	DepartureTime string               `json:"departure_time"`
	DepartureAt   time.Time            `json:"departure_at"`
	Destination   string               `json:"destination"`
	Status        domain.Status        `json:"status"`
	StatusCode    int                  `json:"status_code"`
	Display       domain.StatusDisplay `json:"display"`
	Hidden        bool                 `json:"hidden"`
	LastUpdated   time.Time            `json:"last_updated"`
}

// ListTrips handles GET /trips.
// Returns the visible board; ?include_hidden=true returns every trip.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var includeHidden *bool
	if err := runtime.BindQueryParameter("form", true, false, "include_hidden", r.URL.Query(), &includeHidden); err != nil {
		badRequest(w, "invalid include_hidden parameter")
		return
	}

	list := s.trips.ListVisible
	if includeHidden != nil && *includeHidden {
		list = s.trips.ListAll
	}

	trips, err := list(r.Context(), s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	tod, dest, ok := s.decodeTripRequest(w, r)
	if !ok {
		return
	}

	created, err := s.trips.Create(r.Context(), s.now(), tod, dest)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ResetTrips handles POST /trips/reset.
func (s *Server) ResetTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ResetAll(r.Context(), s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := bindTripID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := bindTripID(w, r)
	if !ok {
		return
	}
	tod, dest, ok := s.decodeTripRequest(w, r)
	if !ok {
		return
	}

	updated, err := s.trips.Reschedule(r.Context(), s.now(), id, tod, dest)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// RetireTrip handles POST /trips/{id}/retire.
func (s *Server) RetireTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := bindTripID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.Retire(r.Context(), s.now(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ReactivateTrip handles POST /trips/{id}/reactivate.
func (s *Server) ReactivateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := bindTripID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.Reactivate(r.Context(), s.now(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := bindTripID(w, r)
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request helpers --------------------------------------------------------

// bindTripID binds the {id} path parameter. A malformed ID cannot name an
// existing trip, so it is reported as 404 rather than 400.
func bindTripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		notFound(w, "trip not found")
		return uuid.Nil, false
	}
	return id, true
}

// decodeTripRequest reads a TripRequest and checks what the handler owns:
// the body shape, the time format and the destination allow-list. Length and
// emptiness rules are left to the engine.
func (s *Server) decodeTripRequest(w http.ResponseWriter, r *http.Request) (domain.TimeOfDay, string, bool) {
	var body TripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		case errors.Is(err, io.EOF):
			validationFailed(w, "request body is required")
		default:
			badRequest(w, "request body is not valid JSON")
		}
		return domain.TimeOfDay{}, "", false
	}

	// Timestamps with an offset are read on the board's clock.
	tod, err := domain.ParseTimeOfDayIn(body.DepartureTime, s.now().Location())
	if err != nil {
		validationFailed(w, unwrapMessage(err, domain.ErrValidation))
		return domain.TimeOfDay{}, "", false
	}

	if body.Destination != "" && !s.allowedDestination(body.Destination) {
		validationFailed(w, "destination "+body.Destination+" is not offered")
		return domain.TimeOfDay{}, "", false
	}

	return tod, body.Destination, true
}

// --- mapping helpers --------------------------------------------------------

// tripToResponse converts a domain.Trip into its JSON representation.
func tripToResponse(t domain.Trip) Trip {
	return Trip{
		Id:            t.ID,
		DepartureTime: t.TimeOfDay().String(),
		DepartureAt:   t.DepartureAt,
		Destination:   t.Destination,
		Status:        t.Status,
		StatusCode:    int(t.Status),
		Display:       domain.DisplayFor(t.Status),
		Hidden:        t.Hidden,
		LastUpdated:   t.LastUpdated,
	}
}

func tripsToResponse(trips []domain.Trip) []Trip {
	out := make([]Trip, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	return out
}
