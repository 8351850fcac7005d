package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/departure-board/internal/domain"
)

// BoardLister is the part of TripService the export needs.
type BoardLister interface {
	ListAll(ctx context.Context, now time.Time) ([]domain.Trip, error)
}

// ExportService assembles a flat export of the whole board.
type ExportService struct {
	trips BoardLister
}

// NewExportService constructs an ExportService reading from trips.
func NewExportService(trips BoardLister) *ExportService {
	return &ExportService{trips: trips}
}

// Export reconciles the board at now and returns one ExportRow per trip,
// hidden trips included, in departure order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExportService) Export(ctx context.Context, now time.Time) ([]domain.ExportRow, error) {
	trips, err := s.trips.ListAll(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, domain.ExportRow{
			TripID:        t.ID.String(),
			DepartureTime: t.TimeOfDay().String(),
			DepartureAt:   t.DepartureAt,
			Destination:   t.Destination,
			Status:        t.Status.String(),
			StatusLabel:   domain.DisplayFor(t.Status).Label,
			Hidden:        t.Hidden,
			LastUpdated:   t.LastUpdated,
		})
	}
	return rows, nil
}
