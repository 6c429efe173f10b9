package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/views"
)

func sampleReport() Report {
	team := models.ID(1)
	in := views.Inputs{
		Jobs: []models.Job{
			{ID: 1, Address: "1 Test St", ClientName: "Acme", JobType: "Drywall", Status: models.JobInProgress, TeamID: &team},
			{ID: 2, Address: "2 Test St", ClientName: "Buildco", JobType: "Roofing", Status: models.JobScheduled},
		},
		Workers:     []models.Worker{{ID: 10, Name: "Sam Lee", HourlyRate: 50}},
		TimeEntries: []models.TimeEntry{{WorkerID: 10, JobID: 1, Hours: 6}, {WorkerID: 12, JobID: 2, Hours: 2}},
		Incidents:   []models.SafetyIncident{{JobID: 1, SeverityLevel: models.SeverityHigh}},
	}
	return Build(in, []models.Team{{ID: 1, Name: "Framers"}}, time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC))
}

func TestWorkbook(t *testing.T) {
	data, err := sampleReport().Workbook()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetJobs, SheetWorkers, SheetSafety}, f.GetSheetList())

	rows, err := f.GetRows(SheetJobs)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header, two jobs and a total row")
	assert.Equal(t, jobHeader, rows[0])
	assert.Equal(t, "1 Test St", rows[1][1])
	assert.Equal(t, "In Progress", rows[1][4])
	assert.Equal(t, "Framers", rows[1][5])
	assert.Equal(t, "300", rows[1][7])
	assert.Equal(t, views.Unassigned, rows[2][5])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "8", rows[3][6])

	workers, err := f.GetRows(SheetWorkers)
	require.NoError(t, err)
	require.Len(t, workers, 3)
	assert.Equal(t, []string{"Sam Lee", "6"}, workers[1])
	assert.Equal(t, []string{"User 12", "2"}, workers[2])

	safety, err := f.GetRows(SheetSafety)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "1"}, safety[2])
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := sampleReport().WriteFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "constructsync-report-20250610-093000.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
