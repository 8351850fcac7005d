// GET /export returns every trip on the board, hidden ones included, as a
// flat table. Supports ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/departure-board/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "departure_time", "departure_at", "destination",
	"status", "status_label", "hidden", "last_updated",
}

// ExportRow is the JSON representation of one export row.
type ExportRow struct {
	TripID        string    `json:"trip_id"`
	DepartureTime string    `json:"departure_time"`
	DepartureAt   time.Time `json:"departure_at"`
	Destination   string    `json:"destination"`
	Status        string    `json:"status"`
	StatusLabel   string    `json:"status_label"`
	Hidden        bool      `json:"hidden"`
	LastUpdated   time.Time `json:"last_updated"`
}

// GetExport handles GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		badRequest(w, "invalid format parameter")
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case "csv":
			wantCSV = true
		case "json":
		default:
			validationFailed(w, "format must be csv or json")
			return
		}
	}

	rows, err := s.export.Export(r.Context(), s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONResponse(rows))
}

// buildJSONResponse converts domain rows to the JSON response.
func buildJSONResponse(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV into a buffer first so a write error
// cannot leave a half-sent table behind a 200.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="departures.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Timestamps are written in the board's local clock.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.DepartureTime,
		r.DepartureAt.Format(time.RFC3339),
		r.Destination,
		r.Status,
		r.StatusLabel,
		strconv.FormatBool(r.Hidden),
		r.LastUpdated.Format(time.RFC3339),
	}
}
