package views

import (
	"sort"

	"github.com/constructsync/dashboard/internal/models"
)

// JobSummary aggregates everything known about one job's cost and risk.
type JobSummary struct {
	Job                 models.Job
	Hours               float64
	LabourCost          float64
	VariationCount      int
	VariationTotal      float64
	ContractValue       float64
	ContractPaid        float64
	ContractOutstanding float64
	Incidents           int
}

// Totals sums a set of job summaries.
type Totals struct {
	Jobs                int
	Hours               float64
	LabourCost          float64
	VariationTotal      float64
	ContractValue       float64
	ContractOutstanding float64
	Incidents           int
}

// Inputs groups the collections a report is built from. Missing collections
// count as empty.
type Inputs struct {
	Jobs        []models.Job
	Workers     []models.Worker
	TimeEntries []models.TimeEntry
	Variations  []models.Variation
	Contracts   []models.SubcontractorContract
	Incidents   []models.SafetyIncident
}

// Summarize builds one summary per job, in job order. Time entries,
// variations, contracts and incidents pointing at unknown jobs are ignored.
func Summarize(in Inputs) []JobSummary {
	index := make(map[models.ID]int, len(in.Jobs))
	out := make([]JobSummary, len(in.Jobs))
	for i, j := range in.Jobs {
		index[j.ID] = i
		out[i].Job = j
	}

	rates := make(map[models.ID]float64, len(in.Workers))
	for _, w := range in.Workers {
		rates[w.ID] = w.HourlyRate.Float()
	}

	for _, e := range in.TimeEntries {
		i, ok := index[e.JobID]
		if !ok {
			continue
		}
		out[i].Hours += e.Hours.Float()
		out[i].LabourCost += e.Hours.Float() * rates[e.WorkerID]
	}

	for _, v := range in.Variations {
		i, ok := index[v.JobID]
		if !ok {
			continue
		}
		out[i].VariationCount++
		out[i].VariationTotal += v.ClientAmount.Float()
	}

	for _, c := range in.Contracts {
		i, ok := index[c.JobID]
		if !ok {
			continue
		}
		out[i].ContractValue += c.TotalValue.Float()
		out[i].ContractPaid += c.TotalPaid.Float()
		out[i].ContractOutstanding += c.Outstanding.Float()
	}

	for _, inc := range in.Incidents {
		if i, ok := index[inc.JobID]; ok {
			out[i].Incidents++
		}
	}

	return out
}

func Total(summaries []JobSummary) Totals {
	t := Totals{Jobs: len(summaries)}
	for _, s := range summaries {
		t.Hours += s.Hours
		t.LabourCost += s.LabourCost
		t.VariationTotal += s.VariationTotal
		t.ContractValue += s.ContractValue
		t.ContractOutstanding += s.ContractOutstanding
		t.Incidents += s.Incidents
	}
	return t
}

// WorkerHours is the total logged by one worker.
type WorkerHours struct {
	WorkerID models.ID
	Hours    float64
}

// HoursByWorker totals time entries per worker, most hours first.
func HoursByWorker(entries []models.TimeEntry) []WorkerHours {
	totals := make(map[models.ID]float64)
	var order []models.ID
	for _, e := range entries {
		if _, seen := totals[e.WorkerID]; !seen {
			order = append(order, e.WorkerID)
		}
		totals[e.WorkerID] += e.Hours.Float()
	}

	out := make([]WorkerHours, len(order))
	for i, id := range order {
		out[i] = WorkerHours{WorkerID: id, Hours: totals[id]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Hours > out[b].Hours })
	return out
}

// OpenEntries returns entries still missing a check-out.
func OpenEntries(entries []models.TimeEntry) []models.TimeEntry {
	var out []models.TimeEntry
	for _, e := range entries {
		if e.IsOpen() {
			out = append(out, e)
		}
	}
	return out
}

// FilterVariations keeps variations with status; an empty status keeps all.
func FilterVariations(vs []models.Variation, status models.VariationStatus) []models.Variation {
	out := make([]models.Variation, 0, len(vs))
	for _, v := range vs {
		if status == "" || v.Status == status {
			out = append(out, v)
		}
	}
	return out
}

func IncidentsBySeverity(incidents []models.SafetyIncident) map[models.Severity]int {
	out := make(map[models.Severity]int)
	for _, i := range incidents {
		out[i.SeverityLevel]++
	}
	return out
}
