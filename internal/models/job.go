package models

type JobStatus string

const (
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
	JobArchived   JobStatus = "archived"
)

var jobStatuses = []JobStatus{JobScheduled, JobInProgress, JobCompleted, JobCancelled, JobArchived}

func (s JobStatus) IsValid() bool {
	for _, v := range jobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns the display form of a status, e.g. "In Progress".
func (s JobStatus) Label() string {
	switch s {
	case JobScheduled:
		return "Scheduled"
	case JobInProgress:
		return "In Progress"
	case JobCompleted:
		return "Completed"
	case JobCancelled:
		return "Cancelled"
	case JobArchived:
		return "Archived"
	case "":
		return "No status"
	}
	return string(s)
}

type Job struct {
	ID          ID        `json:"id"`
	Address     string    `json:"address"`
	JobType     string    `json:"jobType"`
	ClientName  string    `json:"clientName"`
	Status      JobStatus `json:"status"`
	StartTime   Timestamp `json:"startTime"`
	EndTime     Timestamp `json:"endTime"`
	TeamID      *ID       `json:"teamId,omitempty"`
	AssignedTo  *ID       `json:"assignedTo,omitempty"`
	WorkerIDs   []ID      `json:"workerIds"`
	ManagerIDs  []ID      `json:"managerIds,omitempty"`
	Description string    `json:"description,omitempty"`
	Budget      Number    `json:"budget,omitempty"`
	Latitude    *Number   `json:"latitude,omitempty"`
	Longitude   *Number   `json:"longitude,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`

	// Legacy field names still sent by older API versions
	LegacyClient string `json:"client_name,omitempty"`
	LegacyType   string `json:"job_type,omitempty"`
}

// HasAssignee reports whether the job is assigned to a team or a user.
func (j Job) HasAssignee() bool {
	return j.TeamID != nil || j.AssignedTo != nil
}
