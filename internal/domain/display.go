package domain

// StatusDisplay is how the board renders a status: a label, the CSS class
// for the table row and badge, and an icon class.
type StatusDisplay struct {
	Label      string `json:"label"`
	RowClass   string `json:"row_class"`
	BadgeClass string `json:"badge_class"`
	Icon       string `json:"icon"`
}

var unknownDisplay = StatusDisplay{
	Label:      "Unknown",
	BadgeClass: "bg-secondary",
	Icon:       "fas fa-question",
}

var displays = map[Status]StatusDisplay{
	StatusBoarding: {
		Label:      "Boarding",
		RowClass:   "table-success",
		BadgeClass: "bg-success",
		Icon:       "fas fa-users",
	},
	StatusInTransit: {
		Label:      "In Transit",
		RowClass:   "table-warning",
		BadgeClass: "bg-warning text-dark",
		Icon:       "fas fa-route",
	},
	StatusFinished: {
		Label:      "Finished",
		RowClass:   "table-secondary",
		BadgeClass: "bg-secondary",
		Icon:       "fas fa-check-circle",
	},
	StatusWaiting: {
		Label:      "Waiting",
		BadgeClass: "bg-info",
		Icon:       "fas fa-clock",
	},
	StatusOutOfService: {
		Label:      "Out of Service",
		RowClass:   "table-danger",
		BadgeClass: "bg-danger",
		Icon:       "fas fa-exclamation-triangle",
	},
}

// DisplayFor returns the presentation mapping for s.
// Unrecognised values get the "Unknown" mapping.
func DisplayFor(s Status) StatusDisplay {
	if d, ok := displays[s]; ok {
		return d
	}
	return unknownDisplay
}
