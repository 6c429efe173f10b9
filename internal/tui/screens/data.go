package screens

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	"github.com/constructsync/dashboard/internal/models"
)

// Each collection arrives in its own message so a screen joining several of
// them renders as soon as its primary one is ready.
type (
	jobsMsg       struct{ res cache.Result[[]models.Job] }
	workersMsg    struct{ res cache.Result[[]models.Worker] }
	teamsMsg      struct{ res cache.Result[[]models.Team] }
	variationsMsg struct {
		res cache.Result[[]models.Variation]
	}
	entriesMsg struct {
		res cache.Result[[]models.TimeEntry]
	}
	incidentsMsg struct {
		res cache.Result[[]models.SafetyIncident]
	}
	safetySumMsg struct {
		res cache.Result[*models.SafetyDashboard]
	}
	contractsMsg struct {
		res cache.Result[[]models.SubcontractorContract]
	}
	mutationDoneMsg struct {
		what string
		err  error
	}
)

// load reads col, or refetches it when refetch is set, and wraps the result.
func load[T any, M tea.Msg](ctx context.Context, col *cache.Collection[T], refetch bool, wrap func(cache.Result[T]) M) tea.Cmd {
	return func() tea.Msg {
		if refetch {
			return wrap(col.Refetch(ctx))
		}
		return wrap(col.Use(ctx))
	}
}

func (d *Deps) loadJobs(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.Jobs, refetch, func(r cache.Result[[]models.Job]) jobsMsg { return jobsMsg{r} })
}

func (d *Deps) loadWorkers(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.Workers, refetch, func(r cache.Result[[]models.Worker]) workersMsg { return workersMsg{r} })
}

func (d *Deps) loadTeams(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.Teams, refetch, func(r cache.Result[[]models.Team]) teamsMsg { return teamsMsg{r} })
}

func (d *Deps) loadVariations(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.Variations, refetch, func(r cache.Result[[]models.Variation]) variationsMsg { return variationsMsg{r} })
}

func (d *Deps) loadEntries(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.TimeEntries, refetch, func(r cache.Result[[]models.TimeEntry]) entriesMsg { return entriesMsg{r} })
}

func (d *Deps) loadIncidents(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.Incidents, refetch, func(r cache.Result[[]models.SafetyIncident]) incidentsMsg { return incidentsMsg{r} })
}

func (d *Deps) loadSafetySummary(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.SafetyDashboard, refetch, func(r cache.Result[*models.SafetyDashboard]) safetySumMsg { return safetySumMsg{r} })
}

func (d *Deps) loadContracts(ctx context.Context, refetch bool) tea.Cmd {
	return load(ctx, d.Data.Contracts, refetch, func(r cache.Result[[]models.SubcontractorContract]) contractsMsg { return contractsMsg{r} })
}

// mutate runs fn off the UI loop and reports back with mutationDoneMsg.
func mutate(ctx context.Context, what string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{what: what, err: fn(ctx)}
	}
}
