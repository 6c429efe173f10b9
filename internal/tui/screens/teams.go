package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/views"
)

type teamsMode int

const (
	teamsModeList teamsMode = iota
	teamsModeAdd
	teamsModeEdit
	teamsModeDelete
)

type Teams struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	teams   cache.Result[[]models.Team]
	workers []models.Worker
	cursor  int
	mode    teamsMode
	input   textinput.Model
	loader  loader
	loading bool
	saving  bool
	err     error
	message string
}

func NewTeams(deps *Deps) *Teams {
	ti := textinput.New()
	ti.Placeholder = "Team name"
	ti.CharLimit = 100
	ti.Width = 40

	return &Teams{
		deps:   deps,
		input:  ti,
		loader: newLoader(),
	}
}

func (t *Teams) SetSize(width, height int) {
	t.width = width
	t.height = height
}

func (t *Teams) Capturing() bool {
	return t.mode == teamsModeAdd || t.mode == teamsModeEdit
}

func (t *Teams) Init(ctx context.Context) tea.Cmd {
	t.ctx = ctx
	t.loading = true
	t.mode = teamsModeList
	t.message = ""
	t.err = nil
	return tea.Batch(t.loader.start(), t.deps.loadTeams(ctx, false), t.deps.loadWorkers(ctx, false))
}

func (t *Teams) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case teamsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		t.loading = false
		t.loader.stop()
		t.teams = msg.res
		t.cursor = clampCursor(t.cursor, len(t.teams.Data))
		return nil

	case workersMsg:
		t.workers = msg.res.Data
		return nil

	case mutationDoneMsg:
		t.saving = false
		if msg.err != nil {
			t.err = msg.err
			return nil
		}
		t.message = msg.what
		return t.deps.loadTeams(t.ctx, false)

	case RefreshMsg:
		return t.Init(t.ctx)

	case tea.KeyMsg:
		return t.handleKey(msg)
	}

	if t.Capturing() {
		var cmd tea.Cmd
		t.input, cmd = t.input.Update(msg)
		return cmd
	}

	return t.loader.update(msg)
}

func (t *Teams) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch t.mode {
	case teamsModeList:
		return t.handleListKey(msg)
	case teamsModeAdd, teamsModeEdit:
		return t.handleInputKey(msg)
	case teamsModeDelete:
		return t.handleDeleteKey(msg)
	}
	return nil
}

func (t *Teams) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k", "down", "j":
		t.cursor = moveCursor(t.cursor, len(t.teams.Data), msg.String())
	case "a":
		t.mode = teamsModeAdd
		t.input.SetValue("")
		return t.input.Focus()
	case "e":
		if len(t.teams.Data) > 0 {
			t.mode = teamsModeEdit
			t.input.SetValue(t.teams.Data[t.cursor].Name)
			return t.input.Focus()
		}
	case "d":
		if len(t.teams.Data) > 0 {
			t.mode = teamsModeDelete
		}
	case "r":
		t.loading = true
		return tea.Batch(t.loader.start(), t.deps.loadTeams(t.ctx, true))
	case "q", "esc":
		return Navigate(session.RouteDashboard)
	}
	return nil
}

func (t *Teams) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(t.input.Value())
		mode := t.mode
		t.mode = teamsModeList
		t.input.Blur()
		if name == "" {
			return nil
		}

		t.saving = true
		t.err = nil
		data := t.deps.Data
		if mode == teamsModeAdd {
			return mutate(t.ctx, fmt.Sprintf("Created team: %s", name), func(ctx context.Context) error {
				return data.CreateTeam(ctx, &models.CreateTeamRequest{Name: name, WorkerIDs: []models.ID{}})
			})
		}
		id := t.teams.Data[t.cursor].ID
		return mutate(t.ctx, fmt.Sprintf("Renamed team: %s", name), func(ctx context.Context) error {
			return data.RenameTeam(ctx, id, name)
		})

	case "esc":
		t.mode = teamsModeList
		t.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return cmd
}

func (t *Teams) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		team := t.teams.Data[t.cursor]
		t.mode = teamsModeList
		t.saving = true
		t.err = nil
		data := t.deps.Data
		return mutate(t.ctx, fmt.Sprintf("Deleted team: %s", team.Name), func(ctx context.Context) error {
			return data.DeleteTeam(ctx, team.ID)
		})

	case "n", "N", "esc":
		t.mode = teamsModeList
	}
	return nil
}

func (t *Teams) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("TEAMS"))
	b.WriteString("\n\n")

	if t.loading {
		b.WriteString(t.loader.view("teams"))
		return b.String()
	}

	if t.teams.IsError {
		writeErrorState(&b, t.teams.Err)
		return b.String()
	}

	if t.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(t.err)))
		b.WriteString("\n\n")
	}

	if t.message != "" {
		b.WriteString(SuccessStyle.Render(t.message))
		b.WriteString("\n\n")
	}

	if t.mode == teamsModeAdd || t.mode == teamsModeEdit {
		if t.mode == teamsModeAdd {
			b.WriteString("New team name:\n")
		} else {
			b.WriteString("Rename team:\n")
		}
		b.WriteString(t.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()
	}

	if t.mode == teamsModeDelete && len(t.teams.Data) > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Delete team '%s'? Jobs assigned to it will show as unassigned. (y/n)",
			t.teams.Data[t.cursor].Name,
		)))
		b.WriteString("\n")
		return b.String()
	}

	if len(t.teams.Data) == 0 {
		b.WriteString(DimStyle.Render("No teams yet. Press 'a' to create one."))
		b.WriteString("\n\n")
	} else {
		resolver := views.NewResolver(nil, t.workers, nil)
		for i, team := range t.teams.Data {
			cursor := "  "
			style := NormalStyle
			if i == t.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			line := fmt.Sprintf("%s%s (%d workers)", cursor, team.Name, len(team.WorkerIDs))
			if team.LeaderID != nil {
				line += ", led by " + resolver.WorkerLabel(*team.LeaderID)
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if t.saving {
		b.WriteString(DimStyle.Render("Saving..."))
		b.WriteString("\n")
	}

	help := "[a] Add  [e] Rename  [d] Delete  [r] Refresh  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
