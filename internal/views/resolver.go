package views

import (
	"fmt"

	"github.com/constructsync/dashboard/internal/models"
)

// Unassigned labels a job with neither a team nor an assignee.
const Unassigned = "Unassigned"

// Resolver turns foreign-key ids into display names. A miss yields a
// placeholder label, never an error, so views render while a sibling
// collection is still loading.
type Resolver struct {
	teams   map[models.ID]string
	workers map[models.ID]string
	jobs    map[models.ID]string
}

func NewResolver(teams []models.Team, workers []models.Worker, jobs []models.Job) *Resolver {
	r := &Resolver{
		teams:   make(map[models.ID]string, len(teams)),
		workers: make(map[models.ID]string, len(workers)),
		jobs:    make(map[models.ID]string, len(jobs)),
	}
	for _, t := range teams {
		if t.Name != "" {
			r.teams[t.ID] = t.Name
		}
	}
	for _, w := range workers {
		if w.Name != "" {
			r.workers[w.ID] = w.Name
		}
	}
	for _, j := range jobs {
		if j.Address != "" {
			r.jobs[j.ID] = j.Address
		}
	}
	return r
}

func (r *Resolver) TeamLabel(id models.ID) string {
	if r != nil {
		if name, ok := r.teams[id]; ok {
			return name
		}
	}
	return fmt.Sprintf("Team %d", id)
}

func (r *Resolver) WorkerLabel(id models.ID) string {
	if r != nil {
		if name, ok := r.workers[id]; ok {
			return name
		}
	}
	return fmt.Sprintf("User %d", id)
}

func (r *Resolver) JobLabel(id models.ID) string {
	if r != nil {
		if addr, ok := r.jobs[id]; ok {
			return addr
		}
	}
	return fmt.Sprintf("Job %d", id)
}

// Assignee names whoever the job is assigned to, preferring the team.
func (r *Resolver) Assignee(j models.Job) string {
	switch {
	case j.TeamID != nil:
		return r.TeamLabel(*j.TeamID)
	case j.AssignedTo != nil:
		return r.WorkerLabel(*j.AssignedTo)
	default:
		return Unassigned
	}
}

func (r *Resolver) WorkerLabels(ids []models.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.WorkerLabel(id)
	}
	return out
}
