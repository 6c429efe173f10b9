package models

// CreateJobRequest is the body of POST /api/jobs.
type CreateJobRequest struct {
	Address     string     `json:"address" validate:"required,max=300"`
	JobType     string     `json:"jobType" validate:"required,max=100"`
	ClientName  string     `json:"clientName" validate:"required,max=200"`
	Status      JobStatus  `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled archived"`
	StartTime   *Timestamp `json:"startTime,omitempty"`
	EndTime     *Timestamp `json:"endTime,omitempty"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	Budget      Number     `json:"budget,omitempty" validate:"gte=0"`

	TeamID     *ID  `json:"teamId,omitempty"`
	WorkerIDs  []ID `json:"workerIds,omitempty"`
	ManagerIDs []ID `json:"managerIds,omitempty"`

	SiteContactName  string `json:"siteContactName,omitempty"`
	SiteContactPhone string `json:"siteContactPhone,omitempty"`
	AccessNotes      string `json:"accessNotes,omitempty"`
	SafetyNotes      string `json:"safetyNotes,omitempty"`
}

// UpdateJobRequest is the body of PATCH /api/jobs/{id}. Nil fields are not sent.
type UpdateJobRequest struct {
	Status     *JobStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled in_progress completed cancelled archived"`
	TeamID     *ID        `json:"teamId,omitempty"`
	AssignedTo *ID        `json:"assignedTo,omitempty"`
	WorkerIDs  []ID       `json:"workerIds,omitempty"`
	ManagerIDs []ID       `json:"managerIds,omitempty"`
	EndTime    *Timestamp `json:"endTime,omitempty"`
}

type CreateTeamRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	WorkerIDs []ID   `json:"workerIds"`
	LeaderID  *ID    `json:"leaderId,omitempty"`
}

type UpdateTeamRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	WorkerIDs []ID    `json:"workerIds,omitempty"`
	LeaderID  *ID     `json:"leaderId,omitempty"`
}

type CreateVariationRequest struct {
	JobID        ID              `json:"jobId" validate:"required"`
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description,omitempty"`
	Status       VariationStatus `json:"status" validate:"oneof=open in_progress completed"`
	Priority     Priority        `json:"priority" validate:"oneof=low medium high"`
	PricingModel PricingModel    `json:"pricingModel" validate:"oneof=fixed hourly hybrid"`
	ClientAmount Number          `json:"clientAmount" validate:"gte=0"`
	HourlyRate   Number          `json:"hourlyRate,omitempty" validate:"gte=0"`
}

type CreateIncidentRequest struct {
	JobID         ID        `json:"jobId" validate:"required"`
	Title         string    `json:"title" validate:"required,max=200"`
	Description   string    `json:"description,omitempty"`
	SeverityLevel Severity  `json:"severityLevel" validate:"oneof=low medium high critical"`
	IncidentDate  Timestamp `json:"incidentDate"`
	ReporterID    ID        `json:"reporterId,omitempty"`
}
