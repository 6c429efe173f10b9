package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/views"
)

type Dashboard struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	jobs    cache.Result[[]models.Job]
	loader  loader
	loading bool
}

func NewDashboard(deps *Deps) *Dashboard {
	return &Dashboard{
		deps:   deps,
		loader: newLoader(),
	}
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *Dashboard) Capturing() bool { return false }

func (d *Dashboard) Init(ctx context.Context) tea.Cmd {
	d.ctx = ctx
	d.loading = true
	return tea.Batch(d.loader.start(), d.deps.loadJobs(ctx, false))
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case jobsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		d.loading = false
		d.loader.stop()
		d.jobs = msg.res
		return nil

	case RefreshMsg:
		return d.Init(d.ctx)

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			d.loading = true
			return tea.Batch(d.loader.start(), d.deps.loadJobs(d.ctx, true))
		case "n":
			return Navigate(session.RouteNewJob)
		case "enter":
			return Navigate(session.RouteJobs)
		}
	}

	return d.loader.update(msg)
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CONSTRUCTSYNC"))
	b.WriteString("\n")
	greeting := "Construction management dashboard"
	if name := d.deps.Session.DisplayName(); name != "" {
		greeting = "Welcome back, " + name
	}
	b.WriteString(SubtitleStyle.Render(greeting))
	b.WriteString("\n\n")

	if d.loading {
		b.WriteString(d.loader.view("jobs"))
		return b.String()
	}

	if d.jobs.IsError {
		writeErrorState(&b, d.jobs.Err)
		return b.String()
	}

	buckets := views.PartitionByStatus(d.jobs.Data)
	stats := fmt.Sprintf(
		"Total jobs: %d\nIn progress: %d\nScheduled: %d\nCompleted: %d",
		len(buckets.All),
		len(buckets.InProgress),
		len(buckets.Scheduled),
		len(buckets.Completed),
	)
	b.WriteString(BoxStyle.Render(stats))
	b.WriteString("\n\n")

	b.WriteString(SubtitleStyle.Render("This week"))
	b.WriteString("\n")
	if len(d.jobs.Data) == 0 {
		b.WriteString(DimStyle.Render("No jobs yet. Press 'n' to create one."))
		b.WriteString("\n")
	} else {
		for _, day := range views.Week(d.jobs.Data, d.deps.Now()) {
			line := fmt.Sprintf("  %s  %d jobs", day.Date.Format("Mon Jan 02"), len(day.Jobs))
			switch {
			case day.Overdue:
				b.WriteString(ErrorStyle.Render(line + fmt.Sprintf(", %d pending (overdue)", day.Pending)))
			case day.Pending > 0:
				b.WriteString(WarningStyle.Render(line + fmt.Sprintf(", %d pending", day.Pending)))
			default:
				b.WriteString(DimStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	help := "[enter] Jobs  [n] New job  [r] Refresh  [q] Quit"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
