package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/views"
)

type Jobs struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	jobs    cache.Result[[]models.Job]
	teams   []models.Team
	workers []models.Worker
	loader  loader
	loading bool

	tab       int
	search    textinput.Model
	searching bool
	sortDesc  bool
	cursor    int
}

func NewJobs(deps *Deps) *Jobs {
	ti := textinput.New()
	ti.Placeholder = "Search address, client or type"
	ti.CharLimit = 100
	ti.Width = 40

	return &Jobs{
		deps:   deps,
		loader: newLoader(),
		search: ti,
	}
}

func (j *Jobs) SetSize(width, height int) {
	j.width = width
	j.height = height
}

func (j *Jobs) Capturing() bool { return j.searching }

func (j *Jobs) Init(ctx context.Context) tea.Cmd {
	j.ctx = ctx
	j.loading = true
	return tea.Batch(
		j.loader.start(),
		j.deps.loadJobs(ctx, false),
		j.deps.loadTeams(ctx, false),
		j.deps.loadWorkers(ctx, false),
	)
}

// visible is the current tab, filtered and sorted by end time.
func (j *Jobs) visible() []models.Job {
	jobs := views.PartitionByStatus(j.jobs.Data).Tab(views.Tabs[j.tab])
	jobs = views.Search(jobs, j.search.Value())
	return views.SortByDate(jobs, views.FieldEnd, j.sortDesc)
}

func (j *Jobs) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case jobsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		j.loading = false
		j.loader.stop()
		j.jobs = msg.res
		j.cursor = clampCursor(j.cursor, len(j.visible()))
		return nil

	case teamsMsg:
		j.teams = msg.res.Data
		return nil

	case workersMsg:
		j.workers = msg.res.Data
		return nil

	case RefreshMsg:
		return j.Init(j.ctx)

	case tea.KeyMsg:
		if j.searching {
			return j.handleSearchKey(msg)
		}
		return j.handleListKey(msg)
	}

	if j.searching {
		var cmd tea.Cmd
		j.search, cmd = j.search.Update(msg)
		return cmd
	}
	return j.loader.update(msg)
}

func (j *Jobs) handleListKey(msg tea.KeyMsg) tea.Cmd {
	visible := j.visible()
	switch msg.String() {
	case "up", "k", "down", "j":
		j.cursor = moveCursor(j.cursor, len(visible), msg.String())
	case "tab", "right", "l":
		j.tab = (j.tab + 1) % len(views.Tabs)
		j.cursor = 0
	case "shift+tab", "left", "h":
		j.tab = (j.tab - 1 + len(views.Tabs)) % len(views.Tabs)
		j.cursor = 0
	case "/":
		j.searching = true
		return j.search.Focus()
	case "s":
		j.sortDesc = !j.sortDesc
	case "r":
		j.loading = true
		return tea.Batch(j.loader.start(), j.deps.loadJobs(j.ctx, true))
	case "n":
		return Navigate(session.RouteNewJob)
	case "enter":
		if len(visible) > 0 {
			return NavigateToJob(visible[j.cursor].ID)
		}
	case "esc":
		if j.search.Value() != "" {
			j.search.SetValue("")
			j.cursor = 0
			return nil
		}
		return Navigate(session.RouteDashboard)
	}
	return nil
}

func (j *Jobs) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		j.searching = false
		j.search.Blur()
		j.cursor = 0
		return nil
	}
	var cmd tea.Cmd
	j.search, cmd = j.search.Update(msg)
	j.cursor = 0
	return cmd
}

func (j *Jobs) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("JOBS"))
	b.WriteString("\n\n")

	if j.loading {
		b.WriteString(j.loader.view("jobs"))
		return b.String()
	}

	if j.jobs.IsError {
		writeErrorState(&b, j.jobs.Err)
		return b.String()
	}

	buckets := views.PartitionByStatus(j.jobs.Data)
	var tabs []string
	for i, tab := range views.Tabs {
		label := fmt.Sprintf("%s (%d)", tab, len(buckets.Tab(tab)))
		if i == j.tab {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	if j.searching || j.search.Value() != "" {
		b.WriteString("Search: ")
		b.WriteString(j.search.View())
		b.WriteString("\n\n")
	}

	visible := j.visible()
	if len(visible) == 0 {
		switch {
		case len(j.jobs.Data) == 0:
			b.WriteString(DimStyle.Render("No jobs yet. Press 'n' to create the first one."))
		case j.search.Value() != "":
			b.WriteString(DimStyle.Render("No jobs match your search."))
		default:
			b.WriteString(DimStyle.Render("No jobs in this tab."))
		}
		b.WriteString("\n")
	} else {
		resolver := views.NewResolver(j.teams, j.workers, nil)
		now := j.deps.Now()
		for i, job := range visible {
			cursor := "  "
			style := NormalStyle
			if i == j.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			line := fmt.Sprintf("%s%-28s %-16s %-12s %s  %s",
				cursor,
				job.Address,
				job.ClientName,
				job.Status.Label(),
				progressBar(views.Progress(job, now), 10),
				resolver.Assignee(job),
			)
			if views.IsOverdue(job, now) {
				style = ErrorStyle
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}

	order := "ending soonest"
	if j.sortDesc {
		order = "ending latest"
	}
	b.WriteString(DimStyle.Render("\nSorted by end date, " + order))
	b.WriteString("\n")

	help := "[tab] Next tab  [/] Search  [s] Sort  [enter] Open  [n] New job  [r] Refresh  [esc] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
