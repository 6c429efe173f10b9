package models

import "strings"

// The Normalize functions fill defaults once at the API boundary so views
// never need fallback chains.

func NormalizeJob(j *Job) {
	if j.ClientName == "" {
		j.ClientName = j.LegacyClient
	}
	if j.JobType == "" {
		j.JobType = j.LegacyType
	}
	j.LegacyClient, j.LegacyType = "", ""
	if j.WorkerIDs == nil {
		j.WorkerIDs = []ID{}
	}
}

func NormalizeWorker(w *Worker) {
	if w.Name == "" {
		w.Name = strings.TrimSpace(w.FirstName + " " + w.LastName)
	}
	if w.Role == "" {
		w.Role = w.Type
	}
	if w.Status == "" {
		w.Status = "active"
	}
	if w.Skills == nil {
		w.Skills = []string{}
	}
}

func NormalizeTeam(t *Team) {
	if t.WorkerIDs == nil {
		t.WorkerIDs = []ID{}
	}
}

func NormalizeVariation(v *Variation) {
	if v.Status == "" {
		v.Status = VariationOpen
	}
	if v.Priority == "" {
		v.Priority = PriorityMedium
	}
	if v.PricingModel == "" {
		v.PricingModel = PricingFixed
	}
}

func NormalizeTimeEntry(e *TimeEntry) {
	if e.Hours == 0 && !e.CheckInTime.IsZero() && !e.CheckOutTime.IsZero() &&
		e.CheckOutTime.After(e.CheckInTime.Time) {
		e.Hours = Number(e.CheckOutTime.Sub(e.CheckInTime.Time).Hours())
	}
}

func NormalizeIncident(i *SafetyIncident) {
	if i.Status == "" {
		i.Status = "open"
	}
	if i.SeverityLevel == "" {
		i.SeverityLevel = SeverityLow
	}
}

func NormalizeContract(c *SubcontractorContract) {
	if c.TotalValue == 0 {
		c.TotalValue = c.BaseAmount + c.VariationAmount
	}
	if c.Outstanding == 0 && c.TotalValue > c.TotalPaid {
		c.Outstanding = c.TotalValue - c.TotalPaid
	}
}

func NormalizeSafetyDashboard(d *SafetyDashboard) {
	if d.IncidentsBySeverity == nil {
		d.IncidentsBySeverity = map[Severity]int{}
	}
	if d.RecentIncidents == nil {
		d.RecentIncidents = []SafetyIncident{}
	}
	for i := range d.RecentIncidents {
		NormalizeIncident(&d.RecentIncidents[i])
	}
}
