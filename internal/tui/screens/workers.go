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

type Workers struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	workers cache.Result[[]models.Worker]
	teams   []models.Team
	cursor  int
	loader  loader
	loading bool
}

func NewWorkers(deps *Deps) *Workers {
	return &Workers{
		deps:   deps,
		loader: newLoader(),
	}
}

func (w *Workers) SetSize(width, height int) {
	w.width = width
	w.height = height
}

func (w *Workers) Capturing() bool { return false }

func (w *Workers) Init(ctx context.Context) tea.Cmd {
	w.ctx = ctx
	w.loading = true
	return tea.Batch(w.loader.start(), w.deps.loadWorkers(ctx, false), w.deps.loadTeams(ctx, false))
}

func (w *Workers) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case workersMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		w.loading = false
		w.loader.stop()
		w.workers = msg.res
		w.cursor = clampCursor(w.cursor, len(w.workers.Data))
		return nil

	case teamsMsg:
		w.teams = msg.res.Data
		return nil

	case RefreshMsg:
		return w.Init(w.ctx)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k", "down", "j":
			w.cursor = moveCursor(w.cursor, len(w.workers.Data), msg.String())
		case "r":
			w.loading = true
			return tea.Batch(w.loader.start(), w.deps.loadWorkers(w.ctx, true))
		case "esc", "q":
			return Navigate(session.RouteDashboard)
		}
	}

	return w.loader.update(msg)
}

func (w *Workers) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("WORKERS"))
	b.WriteString("\n\n")

	if w.loading {
		b.WriteString(w.loader.view("workers"))
		return b.String()
	}

	if w.workers.IsError {
		writeErrorState(&b, w.workers.Err)
		return b.String()
	}

	if len(w.workers.Data) == 0 {
		b.WriteString(DimStyle.Render("No workers yet."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r] Refresh  [esc] Back"))
		return b.String()
	}

	resolver := views.NewResolver(w.teams, nil, nil)
	for i, worker := range w.workers.Data {
		cursor := "  "
		style := NormalStyle
		if i == w.cursor {
			cursor = "> "
			style = SelectedStyle
		}

		team := "-"
		if worker.TeamID != nil {
			team = resolver.TeamLabel(*worker.TeamID)
		}
		line := fmt.Sprintf("%s%-24s %-14s %-10s %8s/h  %s",
			cursor,
			worker.Name,
			worker.Role,
			worker.Status,
			formatMoney(worker.HourlyRate.Float()),
			team,
		)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if len(w.workers.Data) > 0 {
		selected := w.workers.Data[w.cursor]
		var details []string
		if selected.Email != "" {
			details = append(details, selected.Email)
		}
		if selected.Phone != "" {
			details = append(details, selected.Phone)
		}
		if len(selected.Skills) > 0 {
			details = append(details, "Skills: "+strings.Join(selected.Skills, ", "))
		}
		if len(details) > 0 {
			b.WriteString("\n")
			b.WriteString(DimStyle.Render(strings.Join(details, "  |  ")))
			b.WriteString("\n")
		}
	}

	b.WriteString(HelpStyle.Render("[r] Refresh  [esc] Back"))
	return b.String()
}
