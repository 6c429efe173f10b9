package api

import (
	"context"

	"github.com/constructsync/dashboard/internal/cache"
	"github.com/constructsync/dashboard/internal/models"
)

// Collections binds every remote collection to the shared cache and routes
// mutations through it, so each successful write invalidates what it touched.
type Collections struct {
	client *Client
	cache  *cache.Cache

	Jobs            *cache.Collection[[]models.Job]
	Workers         *cache.Collection[[]models.Worker]
	Teams           *cache.Collection[[]models.Team]
	Variations      *cache.Collection[[]models.Variation]
	TimeEntries     *cache.Collection[[]models.TimeEntry]
	Incidents       *cache.Collection[[]models.SafetyIncident]
	SafetyDashboard *cache.Collection[*models.SafetyDashboard]
	Contracts       *cache.Collection[[]models.SubcontractorContract]
}

func NewCollections(client *Client, c *cache.Cache) *Collections {
	return &Collections{
		client:          client,
		cache:           c,
		Jobs:            cache.NewCollection(c, KeyJobs, client.ListJobs),
		Workers:         cache.NewCollection(c, KeyWorkers, client.ListWorkers),
		Teams:           cache.NewCollection(c, KeyTeams, client.ListTeams),
		Variations:      cache.NewCollection(c, KeyVariations, client.ListVariations),
		TimeEntries:     cache.NewCollection(c, KeyTimeEntries, client.ListTimeEntries),
		Incidents:       cache.NewCollection(c, KeyIncidents, client.ListIncidents),
		SafetyDashboard: cache.NewCollection(c, KeySafetyDashboard, client.SafetyDashboard),
		Contracts:       cache.NewCollection(c, KeyContracts, client.ListContracts),
	}
}

// Cache returns the cache the collections share.
func (s *Collections) Cache() *cache.Cache {
	return s.cache
}

func (s *Collections) UpdateJob(ctx context.Context, id models.ID, req *models.UpdateJobRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	return s.cache.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.client.UpdateJob(ctx, id, req)
		return err
	}, KeyJobs)
}

// SetJobStatus is the status-only form of UpdateJob.
func (s *Collections) SetJobStatus(ctx context.Context, id models.ID, status models.JobStatus) error {
	return s.UpdateJob(ctx, id, &models.UpdateJobRequest{Status: &status})
}

func (s *Collections) CreateTeam(ctx context.Context, req *models.CreateTeamRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	return s.cache.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.client.CreateTeam(ctx, req)
		return err
	}, KeyTeams)
}

func (s *Collections) RenameTeam(ctx context.Context, id models.ID, name string) error {
	req := &models.UpdateTeamRequest{Name: &name}
	if err := Validate(req); err != nil {
		return err
	}
	return s.cache.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.client.UpdateTeam(ctx, id, req)
		return err
	}, KeyTeams)
}

// DeleteTeam also invalidates jobs and workers, which display team names.
func (s *Collections) DeleteTeam(ctx context.Context, id models.ID) error {
	return s.cache.Mutate(ctx, func(ctx context.Context) error {
		return s.client.DeleteTeam(ctx, id)
	}, KeyTeams, KeyJobs, KeyWorkers)
}

func (s *Collections) CreateVariation(ctx context.Context, req *models.CreateVariationRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	return s.cache.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.client.CreateVariation(ctx, req)
		return err
	}, KeyVariations)
}

func (s *Collections) DeleteVariation(ctx context.Context, id models.ID) error {
	return s.cache.Mutate(ctx, func(ctx context.Context) error {
		return s.client.DeleteVariation(ctx, id)
	}, KeyVariations)
}

// ReportIncident creates an incident and refreshes both safety views.
func (s *Collections) ReportIncident(ctx context.Context, req *models.CreateIncidentRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	return s.cache.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.client.CreateIncident(ctx, req)
		return err
	}, KeyIncidents, KeySafetyDashboard)
}
