package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/report"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/views"
)

type Reports struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	jobs   cache.Result[[]models.Job]
	teams  []models.Team
	inputs views.Inputs
	loader loader

	loading   bool
	exporting bool
	err       error
	message   string
}

func NewReports(deps *Deps) *Reports {
	return &Reports{
		deps:   deps,
		loader: newLoader(),
	}
}

func (r *Reports) SetSize(width, height int) {
	r.width = width
	r.height = height
}

func (r *Reports) Capturing() bool { return false }

func (r *Reports) Init(ctx context.Context) tea.Cmd {
	r.ctx = ctx
	r.loading = true
	r.err = nil
	r.message = ""
	return r.load(false)
}

func (r *Reports) load(refetch bool) tea.Cmd {
	d := r.deps
	return tea.Batch(
		r.loader.start(),
		d.loadJobs(r.ctx, refetch),
		d.loadWorkers(r.ctx, refetch),
		d.loadTeams(r.ctx, refetch),
		d.loadEntries(r.ctx, refetch),
		d.loadVariations(r.ctx, refetch),
		d.loadContracts(r.ctx, refetch),
		d.loadIncidents(r.ctx, refetch),
	)
}

type exportDoneMsg struct {
	path string
	err  error
}

func (r *Reports) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case jobsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		r.loading = false
		r.loader.stop()
		r.jobs = msg.res
		r.inputs.Jobs = msg.res.Data
		return nil
	case workersMsg:
		r.inputs.Workers = msg.res.Data
		return nil
	case teamsMsg:
		r.teams = msg.res.Data
		return nil
	case entriesMsg:
		r.inputs.TimeEntries = msg.res.Data
		return nil
	case variationsMsg:
		r.inputs.Variations = msg.res.Data
		return nil
	case contractsMsg:
		r.inputs.Contracts = msg.res.Data
		return nil
	case incidentsMsg:
		r.inputs.Incidents = msg.res.Data
		return nil

	case exportDoneMsg:
		r.exporting = false
		r.err = msg.err
		if msg.err == nil {
			r.message = "Report saved to " + msg.path
		}
		return nil

	case RefreshMsg:
		return r.Init(r.ctx)

	case tea.KeyMsg:
		switch msg.String() {
		case "x":
			if r.loading || r.jobs.IsError || r.exporting {
				return nil
			}
			r.exporting = true
			r.message = ""
			rep := report.Build(r.inputs, r.teams, r.deps.Now())
			dir := r.deps.ReportsDir
			return func() tea.Msg {
				path, err := rep.WriteFile(dir)
				return exportDoneMsg{path: path, err: err}
			}
		case "r":
			r.loading = true
			return r.load(true)
		case "q", "esc":
			return Navigate(session.RouteDashboard)
		}
	}

	return r.loader.update(msg)
}

func (r *Reports) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("REPORTS"))
	b.WriteString("\n\n")

	if r.loading {
		b.WriteString(r.loader.view("report data"))
		return b.String()
	}

	if r.jobs.IsError {
		writeErrorState(&b, r.jobs.Err)
		return b.String()
	}

	if r.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(r.err)))
		b.WriteString("\n\n")
	}
	if r.message != "" {
		b.WriteString(SuccessStyle.Render(r.message))
		b.WriteString("\n\n")
	}

	summaries := views.Summarize(r.inputs)
	if len(summaries) == 0 {
		b.WriteString(DimStyle.Render("Nothing to report yet. Reports fill in once jobs exist."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r] Refresh  [q] Back"))
		return b.String()
	}

	b.WriteString(DimStyle.Render(fmt.Sprintf("  %-28s %8s %12s %12s %12s %5s",
		"Job", "Hours", "Labour", "Variations", "Outstanding", "Inc.")))
	b.WriteString("\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("  %-28s %8.1f %12s %12s %12s %5d\n",
			s.Job.Address,
			s.Hours,
			formatMoney(s.LabourCost),
			formatMoney(s.VariationTotal),
			formatMoney(s.ContractOutstanding),
			s.Incidents,
		))
	}

	t := views.Total(summaries)
	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(fmt.Sprintf(
		"Jobs: %d\nHours logged: %.1f\nLabour cost: %s\nApproved and pending variations: %s\nContract value: %s\nOutstanding to subcontractors: %s\nIncidents: %d",
		t.Jobs, t.Hours, formatMoney(t.LabourCost), formatMoney(t.VariationTotal),
		formatMoney(t.ContractValue), formatMoney(t.ContractOutstanding), t.Incidents,
	)))
	b.WriteString("\n")

	if r.exporting {
		b.WriteString(DimStyle.Render("Exporting..."))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[x] Export to Excel  [r] Refresh  [q] Back"))
	return b.String()
}
