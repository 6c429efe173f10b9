package models

type Worker struct {
	ID         ID       `json:"id"`
	Name       string   `json:"name"`
	FirstName  string   `json:"firstName,omitempty"`
	LastName   string   `json:"lastName,omitempty"`
	Role       string   `json:"role"`
	Type       string   `json:"type,omitempty"`
	Status     string   `json:"status"`
	HourlyRate Number   `json:"hourlyRate"`
	TeamID     *ID      `json:"teamId,omitempty"`
	Skills     []string `json:"skills"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
}

type Team struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	WorkerIDs []ID   `json:"workerIds"`
	LeaderID  *ID    `json:"leaderId,omitempty"`
}

// HasMember reports whether id is one of the team's workers.
func (t Team) HasMember(id ID) bool {
	for _, w := range t.WorkerIDs {
		if w == id {
			return true
		}
	}
	return false
}

type TimeEntry struct {
	ID           ID        `json:"id"`
	WorkerID     ID        `json:"workerId"`
	JobID        ID        `json:"jobId"`
	CheckInTime  Timestamp `json:"checkInTime"`
	CheckOutTime Timestamp `json:"checkOutTime"`
	Hours        Number    `json:"hours"`
	Notes        string    `json:"notes,omitempty"`
}

// IsOpen reports whether the worker has checked in but not out.
func (e TimeEntry) IsOpen() bool {
	return e.CheckOutTime.IsZero()
}
