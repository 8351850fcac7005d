package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/departure-board/internal/domain"
)

// TestStatus_Codes pins the persisted codes; rows already in the database
// depend on them.
func TestStatus_Codes(t *testing.T) {
	assert.Equal(t, 0, int(domain.StatusBoarding))
	assert.Equal(t, 1, int(domain.StatusInTransit))
	assert.Equal(t, 2, int(domain.StatusFinished))
	assert.Equal(t, 3, int(domain.StatusWaiting))
	assert.Equal(t, 4, int(domain.StatusOutOfService))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "waiting", domain.StatusWaiting.String())
	assert.Equal(t, "in_transit", domain.StatusInTransit.String())
	assert.Equal(t, "out_of_service", domain.StatusOutOfService.String())
	assert.Equal(t, "unknown", domain.Status(9).String())
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range domain.Statuses {
		assert.True(t, s.Valid(), s.String())
	}
	assert.False(t, domain.Status(-1).Valid())
	assert.False(t, domain.Status(5).Valid())
}

func TestParseStatus(t *testing.T) {
	for _, s := range domain.Statuses {
		got, err := domain.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := domain.ParseStatus("delayed")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestStatus_JSONUsesName(t *testing.T) {
	b, err := json.Marshal(struct {
		Status domain.Status `json:"status"`
	}{domain.StatusBoarding})

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"boarding"}`, string(b))

	var back struct {
		Status domain.Status `json:"status"`
	}
	require.Error(t, json.Unmarshal([]byte(`{"status":"delayed"}`), &back))
}

func TestDisplayFor(t *testing.T) {
	tests := []struct {
		status domain.Status
		want   domain.StatusDisplay
	}{
		{domain.StatusBoarding, domain.StatusDisplay{Label: "Boarding", RowClass: "table-success", BadgeClass: "bg-success", Icon: "fas fa-users"}},
		{domain.StatusInTransit, domain.StatusDisplay{Label: "In Transit", RowClass: "table-warning", BadgeClass: "bg-warning text-dark", Icon: "fas fa-route"}},
		{domain.StatusFinished, domain.StatusDisplay{Label: "Finished", RowClass: "table-secondary", BadgeClass: "bg-secondary", Icon: "fas fa-check-circle"}},
		{domain.StatusWaiting, domain.StatusDisplay{Label: "Waiting", RowClass: "", BadgeClass: "bg-info", Icon: "fas fa-clock"}},
		{domain.StatusOutOfService, domain.StatusDisplay{Label: "Out of Service", RowClass: "table-danger", BadgeClass: "bg-danger", Icon: "fas fa-exclamation-triangle"}},
		{domain.Status(42), domain.StatusDisplay{Label: "Unknown", RowClass: "", BadgeClass: "bg-secondary", Icon: "fas fa-question"}},
	}

	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, domain.DisplayFor(tc.status))
		})
	}
}
