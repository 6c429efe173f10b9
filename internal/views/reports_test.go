package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constructsync/dashboard/internal/models"
)

func reportInputs() Inputs {
	checkIn := models.At(time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC))
	checkOut := models.At(time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC))

	return Inputs{
		Jobs: []models.Job{{ID: 1, Address: "1 Test St"}, {ID: 2, Address: "2 Test St"}},
		Workers: []models.Worker{
			{ID: 10, HourlyRate: 50},
			{ID: 11, HourlyRate: 40},
		},
		TimeEntries: []models.TimeEntry{
			{WorkerID: 10, JobID: 1, Hours: 8, CheckInTime: checkIn, CheckOutTime: checkOut},
			{WorkerID: 11, JobID: 1, Hours: 4, CheckInTime: checkIn, CheckOutTime: checkOut},
			{WorkerID: 11, JobID: 2, Hours: 2, CheckInTime: checkIn},
			{WorkerID: 10, JobID: 99, Hours: 100},
		},
		Variations: []models.Variation{
			{JobID: 1, ClientAmount: 1200, Status: models.VariationOpen},
			{JobID: 1, ClientAmount: 300, Status: models.VariationCompleted},
		},
		Contracts: []models.SubcontractorContract{
			{JobID: 2, TotalValue: 5000, TotalPaid: 2000, Outstanding: 3000},
		},
		Incidents: []models.SafetyIncident{
			{JobID: 2, SeverityLevel: models.SeverityHigh},
			{JobID: 2, SeverityLevel: models.SeverityLow},
			{JobID: 1, SeverityLevel: models.SeverityHigh},
		},
	}
}

func TestSummarize(t *testing.T) {
	summaries := Summarize(reportInputs())
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, models.ID(1), first.Job.ID)
	assert.InDelta(t, 12.0, first.Hours, 0.001)
	assert.InDelta(t, 8*50+4*40, first.LabourCost, 0.001)
	assert.Equal(t, 2, first.VariationCount)
	assert.InDelta(t, 1500.0, first.VariationTotal, 0.001)
	assert.Equal(t, 1, first.Incidents)

	second := summaries[1]
	assert.InDelta(t, 2.0, second.Hours, 0.001)
	assert.InDelta(t, 3000.0, second.ContractOutstanding, 0.001)
	assert.Equal(t, 2, second.Incidents)

	totals := Total(summaries)
	assert.Equal(t, 2, totals.Jobs)
	assert.InDelta(t, 14.0, totals.Hours, 0.001, "entries for unknown jobs are ignored")
	assert.Equal(t, 3, totals.Incidents)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(Inputs{}))
	assert.Equal(t, Totals{}, Total(nil))
}

func TestHoursByWorker(t *testing.T) {
	got := HoursByWorker(reportInputs().TimeEntries)
	require.Len(t, got, 2)
	assert.Equal(t, WorkerHours{WorkerID: 10, Hours: 108}, got[0])
	assert.Equal(t, WorkerHours{WorkerID: 11, Hours: 6}, got[1])
}

func TestOpenEntries(t *testing.T) {
	open := OpenEntries(reportInputs().TimeEntries)
	require.Len(t, open, 2)
	assert.Equal(t, models.ID(2), open[0].JobID)
}

func TestFilterVariations(t *testing.T) {
	vs := reportInputs().Variations
	assert.Len(t, FilterVariations(vs, ""), 2)
	assert.Len(t, FilterVariations(vs, models.VariationOpen), 1)
	assert.Empty(t, FilterVariations(vs, models.VariationInProgress))
}

func TestIncidentsBySeverity(t *testing.T) {
	got := IncidentsBySeverity(reportInputs().Incidents)
	assert.Equal(t, map[models.Severity]int{models.SeverityHigh: 2, models.SeverityLow: 1}, got)
}
