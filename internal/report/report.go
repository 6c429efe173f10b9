// Package report writes the aggregated job views to an xlsx workbook.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/views"
)

const (
	SheetJobs    = "Jobs"
	SheetWorkers = "Worker Hours"
	SheetSafety  = "Safety"
)

var jobHeader = []string{
	"Job", "Address", "Client", "Type", "Status", "Assignee",
	"Hours", "Labour Cost", "Variations", "Variation Total",
	"Contract Value", "Contract Outstanding", "Incidents",
}

var workerHeader = []string{"Worker", "Hours"}

var safetyHeader = []string{"Severity", "Incidents"}

// Report is everything a workbook is built from.
type Report struct {
	GeneratedAt time.Time
	Summaries   []views.JobSummary
	WorkerHours []views.WorkerHours
	Severity    map[models.Severity]int
	Resolver    *views.Resolver
}

// Build assembles a Report from fetched collections.
func Build(in views.Inputs, teams []models.Team, now time.Time) Report {
	return Report{
		GeneratedAt: now,
		Summaries:   views.Summarize(in),
		WorkerHours: views.HoursByWorker(in.TimeEntries),
		Severity:    views.IncidentsBySeverity(in.Incidents),
		Resolver:    views.NewResolver(teams, in.Workers, in.Jobs),
	}
}

// Workbook renders r as xlsx bytes.
func (r Report) Workbook() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetJobs)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRows(f, SheetJobs, headerStyle, jobHeader, r.jobRows()); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetWorkers); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeRows(f, SheetWorkers, headerStyle, workerHeader, r.workerRows()); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSafety); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeRows(f, SheetSafety, headerStyle, safetyHeader, r.safetyRows()); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(SheetJobs, "B", "B", 30); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile saves the workbook under dir and returns its path.
func (r Report) WriteFile(dir string) (string, error) {
	data, err := r.Workbook()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("constructsync-report-%s.xlsx", r.GeneratedAt.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (r Report) jobRows() [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Summaries)+1)
	for _, s := range r.Summaries {
		rows = append(rows, []interface{}{
			int64(s.Job.ID), s.Job.Address, s.Job.ClientName, s.Job.JobType,
			s.Job.Status.Label(), r.Resolver.Assignee(s.Job),
			s.Hours, s.LabourCost, s.VariationCount, s.VariationTotal,
			s.ContractValue, s.ContractOutstanding, s.Incidents,
		})
	}
	t := views.Total(r.Summaries)
	rows = append(rows, []interface{}{
		"Total", "", "", "", "", "",
		t.Hours, t.LabourCost, "", t.VariationTotal,
		t.ContractValue, t.ContractOutstanding, t.Incidents,
	})
	return rows
}

func (r Report) workerRows() [][]interface{} {
	rows := make([][]interface{}, 0, len(r.WorkerHours))
	for _, w := range r.WorkerHours {
		rows = append(rows, []interface{}{r.Resolver.WorkerLabel(w.WorkerID), w.Hours})
	}
	return rows
}

func (r Report) safetyRows() [][]interface{} {
	order := []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow}
	rows := make([][]interface{}, 0, len(order))
	for _, sev := range order {
		rows = append(rows, []interface{}{string(sev), r.Severity[sev]})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, headerStyle int, header []string, rows [][]interface{}) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}
