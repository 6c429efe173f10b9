package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/constructsync/dashboard/internal/logger"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/tui/screens"
)

const (
	sidebarWidth          = 22
	sidebarMinimizedWidth = 5
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	navStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	contentStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

type App struct {
	deps   *screens.Deps
	route  string
	width  int
	height int

	// Screen models
	screens map[string]screens.Screen
	detail  *screens.JobDetail

	// cancel stops the current screen's in-flight loads
	cancel context.CancelFunc
	ctx    context.Context
}

func NewApp(ctx context.Context, deps *screens.Deps) *App {
	a := &App{
		deps:   deps,
		ctx:    ctx,
		detail: screens.NewJobDetail(deps),
	}
	a.screens = map[string]screens.Screen{
		session.RouteDashboard:  screens.NewDashboard(deps),
		session.RouteJobs:       screens.NewJobs(deps),
		session.RouteNewJob:     screens.NewNewJob(deps),
		session.RouteWorkers:    screens.NewWorkers(deps),
		session.RouteTeams:      screens.NewTeams(deps),
		session.RouteVariations: screens.NewVariations(deps),
		session.RouteTimesheets: screens.NewTimesheets(deps),
		session.RouteSafety:     screens.NewSafety(deps),
		session.RouteContracts:  screens.NewContracts(deps),
		session.RouteReports:    screens.NewReports(deps),
		session.RouteLogin:      screens.NewLogin(deps),
	}

	a.route = session.RouteDashboard
	if !deps.Session.SignedIn() {
		a.route = session.RouteLogin
	}
	return a
}

// Route returns the route currently shown.
func (a *App) Route() string {
	return a.route
}

func (a *App) current() screens.Screen {
	if _, ok := session.JobIDFromRoute(a.route); ok {
		return a.detail
	}
	return a.screens[a.route]
}

func (a *App) Init() tea.Cmd {
	return a.enter(a.route)
}

// enter switches to route, cancelling whatever the previous screen was
// still loading.
func (a *App) enter(route string) tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}

	if raw, ok := session.JobIDFromRoute(route); ok {
		id, err := models.ParseID(raw)
		if err != nil {
			route = session.RouteJobs
		} else {
			a.detail.SetJobID(id)
		}
	} else if _, ok := a.screens[route]; !ok {
		route = session.RouteDashboard
	}
	a.route = route

	ctx, cancel := context.WithCancel(context.WithValue(a.ctx, logger.ScreenKey, route))
	if a.deps.Session.UserEmail != "" {
		ctx = context.WithValue(ctx, logger.UserKey, a.deps.Session.UserEmail)
	}
	a.cancel = cancel

	logger.WithContext(ctx).Debug("navigate")
	s := a.current()
	s.SetSize(a.contentWidth(), a.height)
	return s.Init(ctx)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()

	case screens.NavigateMsg:
		return a, a.enter(msg.Route)
	}

	return a, a.current().Update(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		if a.cancel != nil {
			a.cancel()
		}
		return tea.Quit, true
	}

	// text inputs own the keyboard while focused
	if a.current().Capturing() {
		return nil, false
	}

	switch key {
	case "q":
		if a.route == session.RouteDashboard {
			return tea.Quit, true
		}
	case "ctrl+b":
		if err := a.deps.Session.ToggleSidebar(a.ctx); err != nil {
			logger.WithContext(a.ctx).WithError(err).Warn("failed to save sidebar state")
		}
		a.resize()
		return nil, true
	case "ctrl+l":
		route, err := a.deps.Session.Logout(a.ctx)
		if err != nil {
			logger.WithContext(a.ctx).WithError(err).Warn("logout failed")
			return nil, true
		}
		return a.enter(route), true
	}

	for _, entry := range session.Nav {
		if key == entry.Key {
			return a.enter(entry.Route), true
		}
	}
	return nil, false
}

func (a *App) resize() {
	w := a.contentWidth()
	for _, s := range a.screens {
		s.SetSize(w, a.height)
	}
	a.detail.SetSize(w, a.height)
}

func (a *App) contentWidth() int {
	if a.route == session.RouteLogin {
		return a.width
	}
	if a.deps.Session.SidebarMinimized {
		return max(0, a.width-sidebarMinimizedWidth-3)
	}
	return max(0, a.width-sidebarWidth-3)
}

func (a *App) sidebar() string {
	var b strings.Builder
	minimized := a.deps.Session.SidebarMinimized

	for _, entry := range session.Nav {
		label := entry.Key + " " + entry.Label
		if minimized {
			label = entry.Key + " " + entry.Label[:1]
		}
		if entry.Active(a.route) {
			b.WriteString(navActiveStyle.Render("> " + label))
		} else {
			b.WriteString(navStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	if !minimized {
		b.WriteString("\n")
		if name := a.deps.Session.DisplayName(); name != "" {
			b.WriteString(screens.DimStyle.Render(name))
			b.WriteString("\n")
		}
		b.WriteString(screens.DimStyle.Render("ctrl+b collapse"))
		b.WriteString("\n")
		b.WriteString(screens.DimStyle.Render("ctrl+l log out"))
	}

	width := sidebarWidth
	if minimized {
		width = sidebarMinimizedWidth
	}
	return sidebarStyle.Width(width).Height(max(0, a.height-1)).Render(b.String())
}

func (a *App) View() string {
	content := a.current().View()

	if a.route == session.RouteLogin {
		return lipgloss.NewStyle().
			Width(a.width).
			Height(a.height).
			Padding(1, 2).
			Render(content)
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, a.sidebar(), contentStyle.Render(content)))
}

func Run(ctx context.Context, deps *screens.Deps) error {
	app := NewApp(ctx, deps)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if app.cancel != nil {
		app.cancel()
	}
	return err
}
