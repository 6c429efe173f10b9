package screens

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/session"
)

const (
	loginEmail = iota
	loginName
)

// Login records who is using the dashboard. Authentication itself happens
// against the API through the session cookie.
type Login struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	form form
	err  error
}

func NewLogin(deps *Deps) *Login {
	return &Login{
		deps: deps,
		form: newForm(
			fieldSpec{"Email", "you@company.com"},
			fieldSpec{"Name", "Your name"},
		),
	}
}

func (l *Login) SetSize(width, height int) {
	l.width = width
	l.height = height
}

func (l *Login) Capturing() bool { return true }

type loginDoneMsg struct{ err error }

func (l *Login) Init(ctx context.Context) tea.Cmd {
	l.ctx = ctx
	l.err = nil
	l.form.reset()
	l.form.set(loginEmail, l.deps.Session.UserEmail)
	l.form.set(loginName, l.deps.Session.UserName)
	return l.form.focusField(0)
}

func (l *Login) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginDoneMsg:
		if msg.err != nil {
			l.err = msg.err
			return nil
		}
		l.form.blur()
		return Navigate(session.RouteDashboard)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return l.form.next()
		case "shift+tab", "up":
			return l.form.prev()
		case "esc":
			return tea.Quit
		case "enter":
			if !l.form.last() {
				return l.form.next()
			}
			email := l.form.value(loginEmail)
			if !strings.Contains(email, "@") {
				l.err = apperrors.NewValidationError("Email", "must be an email address")
				return nil
			}
			name := l.form.value(loginName)
			state, ctx := l.deps.Session, l.ctx
			return func() tea.Msg {
				return loginDoneMsg{err: state.Login(ctx, email, name)}
			}
		}
	}

	return l.form.update(msg)
}

func (l *Login) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CONSTRUCTSYNC"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Sign in"))
	b.WriteString("\n\n")

	if l.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(l.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(l.form.view())
	b.WriteString(HelpStyle.Render("[tab] Next field  [enter] Continue  [esc] Quit"))
	return b.String()
}
