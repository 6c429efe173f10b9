package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/constructsync/dashboard/internal/api"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/wizard"
)

// Deps is what every screen reads from and writes through.
type Deps struct {
	Data       *api.Collections
	Session    *session.State
	Wizard     *wizard.Wizard
	ReportsDir string
	Now        func() time.Time
}

// Screen is one routed view. Init receives a context that is cancelled when
// the user navigates away.
type Screen interface {
	Init(ctx context.Context) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	// Capturing reports whether a text input has focus, so global keys
	// must not be intercepted.
	Capturing() bool
}

// NavigateMsg is sent when navigation to another route is requested
type NavigateMsg struct {
	Route string
}

func Navigate(route string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route}
	}
}

func NavigateToJob(id models.ID) tea.Cmd {
	return Navigate(session.JobRoute(id.String()))
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("241"))

	ActiveTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214"))
)

// loader animates the loading state of a screen.
type loader struct {
	spinner spinner.Model
	active  bool
}

func newLoader() loader {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	return loader{spinner: s}
}

// start begins ticking. Ticks stop once stop is called.
func (l *loader) start() tea.Cmd {
	l.active = true
	return l.spinner.Tick
}

func (l *loader) stop() {
	l.active = false
}

func (l *loader) update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !l.active {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(tick)
	return cmd
}

func (l *loader) view(what string) string {
	return fmt.Sprintf("%s Loading %s...\n", l.spinner.View(), what)
}

// writeErrorState renders a failed load with its retry hint.
func writeErrorState(b *strings.Builder, err error) {
	b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(err)))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("[r] Retry"))
}

// canceled reports a result that belongs to a screen the user already left.
func canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// parseID reads a single id typed into an input.
func parseID(s string) (models.ID, error) {
	return models.ParseID(s)
}

// parseIDs reads a comma separated id list. Blank input is an empty list.
func parseIDs(s string) ([]models.ID, error) {
	var ids []models.ID
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatIDs(ids []models.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatDate(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02, 2006")
}

// progressBar draws pct (0..100) as a bar of width cells.
func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]" +
		fmt.Sprintf(" %3.0f%%", pct)
}

func moveCursor(cursor, n int, key string) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			cursor--
		}
	case "down", "j":
		if cursor < n-1 {
			cursor++
		}
	}
	return cursor
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		return max(0, n-1)
	}
	return cursor
}
