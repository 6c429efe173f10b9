package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/views"
)

var statusChoices = []models.JobStatus{
	models.JobScheduled,
	models.JobInProgress,
	models.JobCompleted,
	models.JobCancelled,
	models.JobArchived,
}

type JobDetail struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	jobID   models.ID
	jobs    cache.Result[[]models.Job]
	teams   []models.Team
	workers []models.Worker
	loader  loader
	loading bool

	choosing bool
	saving   bool
	err      error
	message  string
}

func NewJobDetail(deps *Deps) *JobDetail {
	return &JobDetail{
		deps:   deps,
		loader: newLoader(),
	}
}

func (d *JobDetail) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *JobDetail) Capturing() bool { return false }

// SetJobID selects the job shown on the next Init.
func (d *JobDetail) SetJobID(id models.ID) {
	d.jobID = id
}

func (d *JobDetail) Init(ctx context.Context) tea.Cmd {
	d.ctx = ctx
	d.loading = true
	d.choosing = false
	d.err = nil
	d.message = ""
	return tea.Batch(
		d.loader.start(),
		d.deps.loadJobs(ctx, false),
		d.deps.loadTeams(ctx, false),
		d.deps.loadWorkers(ctx, false),
	)
}

func (d *JobDetail) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case jobsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		d.loading = false
		d.loader.stop()
		d.jobs = msg.res
		return nil

	case teamsMsg:
		d.teams = msg.res.Data
		return nil

	case workersMsg:
		d.workers = msg.res.Data
		return nil

	case mutationDoneMsg:
		d.saving = false
		if msg.err != nil {
			d.err = msg.err
			return nil
		}
		d.message = msg.what
		return d.deps.loadJobs(d.ctx, false)

	case RefreshMsg:
		return d.Init(d.ctx)

	case tea.KeyMsg:
		if d.choosing {
			return d.handleStatusKey(msg)
		}
		switch msg.String() {
		case "r":
			d.loading = true
			return tea.Batch(d.loader.start(), d.deps.loadJobs(d.ctx, true))
		case "x":
			if _, ok := views.FindJob(d.jobs.Data, d.jobID); ok && !d.saving {
				d.choosing = true
			}
		case "esc", "q":
			return Navigate(session.RouteJobs)
		}
	}

	return d.loader.update(msg)
}

func (d *JobDetail) handleStatusKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "esc" {
		d.choosing = false
		return nil
	}
	for i, status := range statusChoices {
		if key != fmt.Sprint(i+1) {
			continue
		}
		d.choosing = false
		d.saving = true
		d.err = nil
		id, deps := d.jobID, d.deps
		return mutate(d.ctx, "Status changed to "+status.Label(), func(ctx context.Context) error {
			return deps.Data.SetJobStatus(ctx, id, status)
		})
	}
	return nil
}

func (d *JobDetail) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("JOB #%s", d.jobID)))
	b.WriteString("\n\n")

	if d.loading {
		b.WriteString(d.loader.view("job"))
		return b.String()
	}

	if d.jobs.IsError {
		writeErrorState(&b, d.jobs.Err)
		return b.String()
	}

	job, ok := views.FindJob(d.jobs.Data, d.jobID)
	if !ok {
		b.WriteString(WarningStyle.Render(apperrors.ErrJobNotFound.Error()))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[esc] Back to jobs"))
		return b.String()
	}

	if d.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(d.err)))
		b.WriteString("\n\n")
	}
	if d.message != "" {
		b.WriteString(SuccessStyle.Render(d.message))
		b.WriteString("\n\n")
	}

	resolver := views.NewResolver(d.teams, d.workers, nil)
	now := d.deps.Now()

	var info strings.Builder
	fmt.Fprintf(&info, "Address:   %s\n", job.Address)
	fmt.Fprintf(&info, "Client:    %s\n", job.ClientName)
	fmt.Fprintf(&info, "Type:      %s\n", job.JobType)
	fmt.Fprintf(&info, "Status:    %s\n", job.Status.Label())
	fmt.Fprintf(&info, "Start:     %s\n", formatDate(job.StartTime))
	fmt.Fprintf(&info, "End:       %s\n", formatDate(job.EndTime))
	fmt.Fprintf(&info, "Progress:  %s\n", progressBar(views.Progress(job, now), 20))
	fmt.Fprintf(&info, "Assigned:  %s\n", resolver.Assignee(job))
	if len(job.WorkerIDs) > 0 {
		fmt.Fprintf(&info, "Workers:   %s\n", strings.Join(resolver.WorkerLabels(job.WorkerIDs), ", "))
	}
	if len(job.ManagerIDs) > 0 {
		fmt.Fprintf(&info, "Managers:  %s\n", strings.Join(resolver.WorkerLabels(job.ManagerIDs), ", "))
	}
	if job.Budget != 0 {
		fmt.Fprintf(&info, "Budget:    %s\n", formatMoney(job.Budget.Float()))
	}
	if job.Description != "" {
		fmt.Fprintf(&info, "\n%s", job.Description)
	}
	b.WriteString(BoxStyle.Render(strings.TrimRight(info.String(), "\n")))
	b.WriteString("\n")

	if views.IsOverdue(job, now) {
		b.WriteString(ErrorStyle.Render("Overdue"))
		b.WriteString("\n")
	}

	if d.choosing {
		b.WriteString("\nNew status:\n")
		for i, status := range statusChoices {
			b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, status.Label()))
		}
		b.WriteString(HelpStyle.Render("[esc] Cancel"))
		return b.String()
	}

	if d.saving {
		b.WriteString(DimStyle.Render("\nSaving..."))
		b.WriteString("\n")
	}

	help := "[x] Change status  [r] Refresh  [esc] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
