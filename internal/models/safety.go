package models

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type SafetyIncident struct {
	ID            ID        `json:"id"`
	JobID         ID        `json:"jobId"`
	Title         string    `json:"title,omitempty"`
	Description   string    `json:"description,omitempty"`
	SeverityLevel Severity  `json:"severityLevel"`
	Status        string    `json:"status"`
	IncidentDate  Timestamp `json:"incidentDate"`
	ReporterID    ID        `json:"reporterId"`
}

// SafetyDashboard is the summary served by /api/safety/dashboard.
type SafetyDashboard struct {
	TotalIncidents        int              `json:"totalIncidents"`
	OpenIncidents         int              `json:"openIncidents"`
	DaysSinceLastIncident *int             `json:"daysSinceLastIncident,omitempty"`
	IncidentsBySeverity   map[Severity]int `json:"incidentsBySeverity"`
	RecentIncidents       []SafetyIncident `json:"recentIncidents"`
}
