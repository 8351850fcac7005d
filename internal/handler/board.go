package handler

import (
	"net/http"

	"github.com/pkordes/departure-board/internal/domain"
)

// StatusInfo describes one status for clients that render the board.
type StatusInfo struct {
	Code    int                  `json:"code"`
	Name    string               `json:"name"`
	Display domain.StatusDisplay `json:"display"`
}

// ListDestinations handles GET /destinations.
// Returns the allow-list offered in the operator's destination picker.
func (s *Server) ListDestinations(w http.ResponseWriter, _ *http.Request) {
	out := make([]string, len(s.destinations))
	copy(out, s.destinations)
	writeJSON(w, http.StatusOK, out)
}

// ListStatuses handles GET /statuses.
// Returns every status in display order with its presentation mapping.
func (s *Server) ListStatuses(w http.ResponseWriter, _ *http.Request) {
	out := make([]StatusInfo, len(domain.Statuses))
	for i, st := range domain.Statuses {
		out[i] = StatusInfo{Code: int(st), Name: st.String(), Display: domain.DisplayFor(st)}
	}
	writeJSON(w, http.StatusOK, out)
}
