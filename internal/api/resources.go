package api

import (
	"context"
	"net/http"

	"github.com/constructsync/dashboard/internal/models"
)

// Cache keys of the collections the dashboard reads.
const (
	KeyJobs            = "jobs"
	KeyWorkers         = "workers"
	KeyTeams           = "teams"
	KeyVariations      = "variations"
	KeyTimeEntries     = "time-entries"
	KeyIncidents       = "safety/incidents"
	KeySafetyDashboard = "safety/dashboard"
	KeyContracts       = "contracts"
)

func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := c.Request(ctx, http.MethodGet, "/api/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	for i := range jobs {
		models.NormalizeJob(&jobs[i])
	}
	return nonNil(jobs), nil
}

func (c *Client) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	var workers []models.Worker
	if err := c.Request(ctx, http.MethodGet, "/api/workers", nil, &workers); err != nil {
		return nil, err
	}
	for i := range workers {
		models.NormalizeWorker(&workers[i])
	}
	return nonNil(workers), nil
}

func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := c.Request(ctx, http.MethodGet, "/api/teams", nil, &teams); err != nil {
		return nil, err
	}
	for i := range teams {
		models.NormalizeTeam(&teams[i])
	}
	return nonNil(teams), nil
}

func (c *Client) ListVariations(ctx context.Context) ([]models.Variation, error) {
	var variations []models.Variation
	if err := c.Request(ctx, http.MethodGet, "/api/variations", nil, &variations); err != nil {
		return nil, err
	}
	for i := range variations {
		models.NormalizeVariation(&variations[i])
	}
	return nonNil(variations), nil
}

func (c *Client) ListTimeEntries(ctx context.Context) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := c.Request(ctx, http.MethodGet, "/api/time-entries", nil, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		models.NormalizeTimeEntry(&entries[i])
	}
	return nonNil(entries), nil
}

func (c *Client) ListIncidents(ctx context.Context) ([]models.SafetyIncident, error) {
	var incidents []models.SafetyIncident
	if err := c.Request(ctx, http.MethodGet, "/api/safety/incidents", nil, &incidents); err != nil {
		return nil, err
	}
	for i := range incidents {
		models.NormalizeIncident(&incidents[i])
	}
	return nonNil(incidents), nil
}

func (c *Client) SafetyDashboard(ctx context.Context) (*models.SafetyDashboard, error) {
	var dashboard models.SafetyDashboard
	if err := c.Request(ctx, http.MethodGet, "/api/safety/dashboard", nil, &dashboard); err != nil {
		return nil, err
	}
	models.NormalizeSafetyDashboard(&dashboard)
	return &dashboard, nil
}

func (c *Client) ListContracts(ctx context.Context) ([]models.SubcontractorContract, error) {
	var contracts []models.SubcontractorContract
	if err := c.Request(ctx, http.MethodGet, "/api/subcontractor-contracts", nil, &contracts); err != nil {
		return nil, err
	}
	for i := range contracts {
		models.NormalizeContract(&contracts[i])
	}
	return nonNil(contracts), nil
}

func (c *Client) CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	var job models.Job
	if err := c.Request(ctx, http.MethodPost, "/api/jobs", req, &job); err != nil {
		return nil, err
	}
	models.NormalizeJob(&job)
	return &job, nil
}

func (c *Client) UpdateJob(ctx context.Context, id models.ID, req *models.UpdateJobRequest) (*models.Job, error) {
	var job models.Job
	if err := c.Request(ctx, http.MethodPatch, "/api/jobs/"+id.String(), req, &job); err != nil {
		return nil, err
	}
	models.NormalizeJob(&job)
	return &job, nil
}

func (c *Client) CreateTeam(ctx context.Context, req *models.CreateTeamRequest) (*models.Team, error) {
	var team models.Team
	if err := c.Request(ctx, http.MethodPost, "/api/teams", req, &team); err != nil {
		return nil, err
	}
	models.NormalizeTeam(&team)
	return &team, nil
}

func (c *Client) UpdateTeam(ctx context.Context, id models.ID, req *models.UpdateTeamRequest) (*models.Team, error) {
	var team models.Team
	if err := c.Request(ctx, http.MethodPatch, "/api/teams/"+id.String(), req, &team); err != nil {
		return nil, err
	}
	models.NormalizeTeam(&team)
	return &team, nil
}

func (c *Client) DeleteTeam(ctx context.Context, id models.ID) error {
	return c.Request(ctx, http.MethodDelete, "/api/teams/"+id.String(), nil, nil)
}

func (c *Client) CreateVariation(ctx context.Context, req *models.CreateVariationRequest) (*models.Variation, error) {
	var variation models.Variation
	if err := c.Request(ctx, http.MethodPost, "/api/variations", req, &variation); err != nil {
		return nil, err
	}
	models.NormalizeVariation(&variation)
	return &variation, nil
}

func (c *Client) DeleteVariation(ctx context.Context, id models.ID) error {
	return c.Request(ctx, http.MethodDelete, "/api/variations/"+id.String(), nil, nil)
}

func (c *Client) CreateIncident(ctx context.Context, req *models.CreateIncidentRequest) (*models.SafetyIncident, error) {
	var incident models.SafetyIncident
	if err := c.Request(ctx, http.MethodPost, "/api/safety/incidents", req, &incident); err != nil {
		return nil, err
	}
	models.NormalizeIncident(&incident)
	return &incident, nil
}

// nonNil turns a JSON null collection into an empty one so views can tell an
// empty result from a missing one.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
