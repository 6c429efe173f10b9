// Package views derives display projections from fetched collections. Every
// function is pure: inputs are never modified and time is passed in.
package views

import (
	"sort"
	"strings"
	"time"

	"github.com/constructsync/dashboard/internal/models"
)

type Tab string

const (
	TabAll        Tab = "All"
	TabInProgress Tab = "In Progress"
	TabScheduled  Tab = "Scheduled"
	TabCompleted  Tab = "Completed"
	TabArchived   Tab = "Archived"
)

// Tabs is the display order of the job status tabs.
var Tabs = []Tab{TabAll, TabInProgress, TabScheduled, TabCompleted, TabArchived}

// Buckets partitions jobs by status. All holds every input job; the other
// buckets are disjoint.
type Buckets struct {
	All        []models.Job
	InProgress []models.Job
	Scheduled  []models.Job
	Completed  []models.Job
	Archived   []models.Job
}

func PartitionByStatus(jobs []models.Job) Buckets {
	b := Buckets{All: append([]models.Job{}, jobs...)}
	for _, j := range jobs {
		switch j.Status {
		case models.JobInProgress:
			b.InProgress = append(b.InProgress, j)
		case models.JobScheduled:
			b.Scheduled = append(b.Scheduled, j)
		case models.JobCompleted:
			b.Completed = append(b.Completed, j)
		case models.JobArchived:
			b.Archived = append(b.Archived, j)
		}
	}
	return b
}

// Tab returns the bucket shown under tab.
func (b Buckets) Tab(tab Tab) []models.Job {
	switch tab {
	case TabInProgress:
		return b.InProgress
	case TabScheduled:
		return b.Scheduled
	case TabCompleted:
		return b.Completed
	case TabArchived:
		return b.Archived
	default:
		return b.All
	}
}

// Search keeps jobs whose address, client name or job type contains q,
// ignoring case. An empty query keeps everything.
func Search(jobs []models.Job, q string) []models.Job {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if q == "" ||
			strings.Contains(strings.ToLower(j.Address), q) ||
			strings.Contains(strings.ToLower(j.ClientName), q) ||
			strings.Contains(strings.ToLower(j.JobType), q) {
			out = append(out, j)
		}
	}
	return out
}

type DateField int

const (
	FieldStart DateField = iota
	FieldEnd
	FieldCreated
)

func (f DateField) value(j models.Job) time.Time {
	switch f {
	case FieldEnd:
		return j.EndTime.Time
	case FieldCreated:
		return j.CreatedAt.Time
	default:
		return j.StartTime.Time
	}
}

// SortByDate orders a copy of jobs by field. Jobs without the date go last in
// either direction; ties keep their fetch order.
func SortByDate(jobs []models.Job, field DateField, desc bool) []models.Job {
	out := append([]models.Job{}, jobs...)
	sort.SliceStable(out, func(a, b int) bool {
		ta, tb := field.value(out[a]), field.value(out[b])
		if ta.IsZero() || tb.IsZero() {
			return !ta.IsZero() && tb.IsZero()
		}
		if desc {
			return ta.After(tb)
		}
		return ta.Before(tb)
	})
	return out
}

// Progress is the elapsed share of a job's schedule at now, in [0, 100]. It is
// 0 when either end is missing or the schedule has no positive length.
func Progress(j models.Job, now time.Time) float64 {
	if j.StartTime.IsZero() || j.EndTime.IsZero() || !j.EndTime.After(j.StartTime.Time) {
		return 0
	}
	total := j.EndTime.Sub(j.StartTime.Time)
	elapsed := now.Sub(j.StartTime.Time)
	pct := float64(elapsed) / float64(total) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// IsOverdue reports a job past its end time that has not been completed.
func IsOverdue(j models.Job, now time.Time) bool {
	return !j.EndTime.IsZero() && j.EndTime.Before(now) && j.Status != models.JobCompleted
}

// IsPending reports a job that still needs work.
func IsPending(j models.Job) bool {
	return j.Status == models.JobScheduled || j.Status == models.JobInProgress
}

// FindJob returns the job with id, if present.
func FindJob(jobs []models.Job, id models.ID) (models.Job, bool) {
	for _, j := range jobs {
		if j.ID == id {
			return j, true
		}
	}
	return models.Job{}, false
}
