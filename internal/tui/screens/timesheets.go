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

type Timesheets struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	entries  cache.Result[[]models.TimeEntry]
	workers  []models.Worker
	jobs     []models.Job
	openOnly bool
	loader   loader
	loading  bool
}

func NewTimesheets(deps *Deps) *Timesheets {
	return &Timesheets{
		deps:   deps,
		loader: newLoader(),
	}
}

func (t *Timesheets) SetSize(width, height int) {
	t.width = width
	t.height = height
}

func (t *Timesheets) Capturing() bool { return false }

func (t *Timesheets) Init(ctx context.Context) tea.Cmd {
	t.ctx = ctx
	t.loading = true
	return tea.Batch(
		t.loader.start(),
		t.deps.loadEntries(ctx, false),
		t.deps.loadWorkers(ctx, false),
		t.deps.loadJobs(ctx, false),
	)
}

func (t *Timesheets) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case entriesMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		t.loading = false
		t.loader.stop()
		t.entries = msg.res
		return nil

	case workersMsg:
		t.workers = msg.res.Data
		return nil

	case jobsMsg:
		t.jobs = msg.res.Data
		return nil

	case RefreshMsg:
		return t.Init(t.ctx)

	case tea.KeyMsg:
		switch msg.String() {
		case "o":
			t.openOnly = !t.openOnly
		case "r":
			t.loading = true
			return tea.Batch(t.loader.start(), t.deps.loadEntries(t.ctx, true))
		case "q", "esc":
			return Navigate(session.RouteDashboard)
		}
	}

	return t.loader.update(msg)
}

func (t *Timesheets) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("TIMESHEETS"))
	b.WriteString("\n\n")

	if t.loading {
		b.WriteString(t.loader.view("time entries"))
		return b.String()
	}

	if t.entries.IsError {
		writeErrorState(&b, t.entries.Err)
		return b.String()
	}

	if len(t.entries.Data) == 0 {
		b.WriteString(DimStyle.Render("No time entries recorded yet."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r] Refresh  [q] Back"))
		return b.String()
	}

	resolver := views.NewResolver(nil, t.workers, t.jobs)

	b.WriteString(SubtitleStyle.Render("Hours by worker"))
	b.WriteString("\n")
	for _, wh := range views.HoursByWorker(t.entries.Data) {
		b.WriteString(fmt.Sprintf("  %-24s %6.1f h\n", resolver.WorkerLabel(wh.WorkerID), wh.Hours))
	}
	b.WriteString("\n")

	entries := t.entries.Data
	title := "All entries"
	if t.openOnly {
		entries = views.OpenEntries(entries)
		title = "On site now"
	}
	b.WriteString(SubtitleStyle.Render(title))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(DimStyle.Render("  Nobody is checked in."))
		b.WriteString("\n")
	}
	for _, e := range entries {
		checkOut := "on site"
		style := WarningStyle
		if !e.IsOpen() {
			checkOut = e.CheckOutTime.Local().Format("15:04")
			style = NormalStyle
		}
		checkIn := "-"
		if !e.CheckInTime.IsZero() {
			checkIn = e.CheckInTime.Local().Format("Jan 02 15:04")
		}
		line := fmt.Sprintf("  %-20s %-24s %s - %-8s %5.1f h",
			resolver.WorkerLabel(e.WorkerID),
			resolver.JobLabel(e.JobID),
			checkIn,
			checkOut,
			e.Hours.Float(),
		)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	help := "[o] Toggle on-site only  [r] Refresh  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
