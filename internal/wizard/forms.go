package wizard

import (
	"time"

	"github.com/constructsync/dashboard/internal/models"
)

// DateLayout is the format of the wizard's date inputs.
const DateLayout = "2006-01-02"

// General is the first step's sub-form.
type General struct {
	Address     string           `json:"address" validate:"required,max=300"`
	JobType     string           `json:"jobType" validate:"required,max=100"`
	ClientName  string           `json:"clientName" validate:"required,max=200"`
	Status      models.JobStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled in_progress completed cancelled archived"`
	StartDate   string           `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string           `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Description string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	Budget      float64          `json:"budget,omitempty" validate:"gte=0"`
}

// Team is the assignment step's sub-form. It is sent in the follow-up PATCH.
type Team struct {
	TeamID     *models.ID  `json:"teamId,omitempty"`
	WorkerIDs  []models.ID `json:"workerIds,omitempty"`
	ManagerIDs []models.ID `json:"managerIds,omitempty"`
}

// HasAssignment reports whether any assignment field was filled in.
func (t Team) HasAssignment() bool {
	return t.TeamID != nil || len(t.WorkerIDs) > 0 || len(t.ManagerIDs) > 0
}

func (t Team) update() *models.UpdateJobRequest {
	return &models.UpdateJobRequest{
		TeamID:     t.TeamID,
		WorkerIDs:  t.WorkerIDs,
		ManagerIDs: t.ManagerIDs,
	}
}

// Site is the last step's sub-form.
type Site struct {
	ContactName  string `json:"siteContactName,omitempty" validate:"omitempty,max=200"`
	ContactPhone string `json:"siteContactPhone,omitempty" validate:"omitempty,max=50"`
	AccessNotes  string `json:"accessNotes,omitempty" validate:"omitempty,max=2000"`
	SafetyNotes  string `json:"safetyNotes,omitempty" validate:"omitempty,max=2000"`
}

// pending records a job that was created but not yet assigned.
type pending struct {
	JobID models.ID `json:"jobId"`
}

// merge combines the three step drafts into one creation request.
func merge(g General, t Team, s Site) *models.CreateJobRequest {
	req := &models.CreateJobRequest{
		Address:          g.Address,
		JobType:          g.JobType,
		ClientName:       g.ClientName,
		Status:           g.Status,
		Description:      g.Description,
		Budget:           models.Number(g.Budget),
		SiteContactName:  s.ContactName,
		SiteContactPhone: s.ContactPhone,
		AccessNotes:      s.AccessNotes,
		SafetyNotes:      s.SafetyNotes,
		TeamID:           t.TeamID,
		WorkerIDs:        t.WorkerIDs,
		ManagerIDs:       t.ManagerIDs,
	}
	if req.Status == "" {
		req.Status = models.JobScheduled
	}
	if v, err := time.Parse(DateLayout, g.StartDate); err == nil {
		start := models.At(v)
		req.StartTime = &start
	}
	if v, err := time.Parse(DateLayout, g.EndDate); err == nil {
		end := models.At(v)
		req.EndTime = &end
	}
	return req
}
