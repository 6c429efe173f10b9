package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/wizard"
)

const (
	generalAddress = iota
	generalJobType
	generalClient
	generalStart
	generalEnd
	generalBudget
	generalDescription
)

const (
	teamID = iota
	teamWorkers
	teamManagers
)

const (
	siteContact = iota
	sitePhone
	siteAccess
	siteSafety
)

// NewJob drives the job creation wizard.
type NewJob struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	forms      map[wizard.Step]*form
	submitting bool
	partial    bool
	err        error
	message    string
}

func NewNewJob(deps *Deps) *NewJob {
	general := newForm(
		fieldSpec{"Address", "12 Harbour St"},
		fieldSpec{"Job type", "Drywall"},
		fieldSpec{"Client name", "Acme Builders"},
		fieldSpec{"Start date", wizard.DateLayout},
		fieldSpec{"End date", wizard.DateLayout},
		fieldSpec{"Budget", "0"},
		fieldSpec{"Description", "Optional"},
	)
	team := newForm(
		fieldSpec{"Team ID", "Optional"},
		fieldSpec{"Worker IDs", "Comma separated, e.g. 4, 7"},
		fieldSpec{"Manager IDs", "Comma separated"},
	)
	site := newForm(
		fieldSpec{"Site contact", "Name"},
		fieldSpec{"Contact phone", "Phone"},
		fieldSpec{"Access notes", "Gate codes, parking"},
		fieldSpec{"Safety notes", "Hazards, PPE"},
	)

	return &NewJob{
		deps: deps,
		forms: map[wizard.Step]*form{
			wizard.GeneralInfo:     &general,
			wizard.TeamAssignment:  &team,
			wizard.SiteInformation: &site,
		},
	}
}

func (n *NewJob) SetSize(width, height int) {
	n.width = width
	n.height = height
}

func (n *NewJob) Capturing() bool {
	return !n.submitting && n.deps.Wizard.Step() != wizard.Submitted
}

type wizardLoadedMsg struct{ err error }

type wizardDoneMsg struct {
	outcome wizard.Outcome
	err     error
}

func (n *NewJob) Init(ctx context.Context) tea.Cmd {
	n.ctx = ctx
	n.err = nil
	n.message = ""
	n.submitting = false
	if n.deps.Wizard.Step() == wizard.Submitted {
		if err := n.deps.Wizard.Discard(ctx); err != nil {
			n.err = err
		}
	}
	w := n.deps.Wizard
	return func() tea.Msg {
		return wizardLoadedMsg{err: w.Load(ctx)}
	}
}

func (n *NewJob) current() *form {
	return n.forms[n.deps.Wizard.Step()]
}

// fill copies the wizard's drafts into the inputs.
func (n *NewJob) fill() {
	w := n.deps.Wizard

	g := n.forms[wizard.GeneralInfo]
	general := w.General()
	g.set(generalAddress, general.Address)
	g.set(generalJobType, general.JobType)
	g.set(generalClient, general.ClientName)
	g.set(generalStart, general.StartDate)
	g.set(generalEnd, general.EndDate)
	if general.Budget != 0 {
		g.set(generalBudget, strconv.FormatFloat(general.Budget, 'f', -1, 64))
	}
	g.set(generalDescription, general.Description)

	t := n.forms[wizard.TeamAssignment]
	team := w.Team()
	if team.TeamID != nil {
		t.set(teamID, team.TeamID.String())
	}
	t.set(teamWorkers, formatIDs(team.WorkerIDs))
	t.set(teamManagers, formatIDs(team.ManagerIDs))

	s := n.forms[wizard.SiteInformation]
	site := w.Site()
	s.set(siteContact, site.ContactName)
	s.set(sitePhone, site.ContactPhone)
	s.set(siteAccess, site.AccessNotes)
	s.set(siteSafety, site.SafetyNotes)
}

// persist writes the current step's inputs through to the wizard, which
// stores them. Unparseable numbers are reported and left out.
func (n *NewJob) persist() error {
	w := n.deps.Wizard
	switch w.Step() {
	case wizard.GeneralInfo:
		f := n.forms[wizard.GeneralInfo]
		g := wizard.General{
			Address:     f.value(generalAddress),
			JobType:     f.value(generalJobType),
			ClientName:  f.value(generalClient),
			StartDate:   f.value(generalStart),
			EndDate:     f.value(generalEnd),
			Description: f.value(generalDescription),
		}
		var parseErr error
		if raw := f.value(generalBudget); raw != "" {
			budget, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				parseErr = apperrors.NewValidationError("Budget", "must be a number")
			}
			g.Budget = budget
		}
		if err := w.SetGeneral(n.ctx, g); err != nil {
			return err
		}
		return parseErr

	case wizard.TeamAssignment:
		f := n.forms[wizard.TeamAssignment]
		var t wizard.Team
		if raw := f.value(teamID); raw != "" {
			id, err := parseID(raw)
			if err != nil {
				return apperrors.NewValidationError("Team ID", err.Error())
			}
			t.TeamID = &id
		}
		workers, err := parseIDs(f.value(teamWorkers))
		if err != nil {
			return apperrors.NewValidationError("Worker IDs", err.Error())
		}
		managers, err := parseIDs(f.value(teamManagers))
		if err != nil {
			return apperrors.NewValidationError("Manager IDs", err.Error())
		}
		t.WorkerIDs, t.ManagerIDs = workers, managers
		return w.SetTeam(n.ctx, t)

	case wizard.SiteInformation:
		f := n.forms[wizard.SiteInformation]
		return w.SetSite(n.ctx, wizard.Site{
			ContactName:  f.value(siteContact),
			ContactPhone: f.value(sitePhone),
			AccessNotes:  f.value(siteAccess),
			SafetyNotes:  f.value(siteSafety),
		})
	}
	return nil
}

func (n *NewJob) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case wizardLoadedMsg:
		if msg.err != nil {
			n.err = msg.err
		}
		n.fill()
		if id, ok := n.deps.Wizard.PendingJob(); ok {
			n.partial = true
			n.message = fmt.Sprintf("Job #%s was created but is not assigned yet.", id)
		}
		if f := n.current(); f != nil {
			return f.focusField(0)
		}
		return nil

	case wizardDoneMsg:
		n.submitting = false
		if msg.err != nil {
			n.err = msg.err
			n.partial = apperrors.IsPartialFailure(msg.err)
			return nil
		}
		n.partial = false
		for _, f := range n.forms {
			f.reset()
		}
		return NavigateToJob(msg.outcome.JobID)

	case tea.KeyMsg:
		if n.submitting {
			return nil
		}
		return n.handleKey(msg)
	}

	if f := n.current(); f != nil && !n.submitting {
		return f.update(msg)
	}
	return nil
}

func (n *NewJob) handleKey(msg tea.KeyMsg) tea.Cmd {
	w := n.deps.Wizard
	f := n.current()
	if f == nil {
		return Navigate(session.RouteJobs)
	}

	switch msg.String() {
	case "tab", "down":
		return f.next()
	case "shift+tab", "up":
		return f.prev()
	case "ctrl+s":
		n.err = n.persist()
		if n.err == nil {
			n.message = "Draft saved"
		}
		return nil
	case "ctrl+r":
		if n.partial {
			return n.submit(true)
		}
		return nil
	case "ctrl+x":
		if err := w.Discard(n.ctx); err != nil {
			n.err = err
			return nil
		}
		for _, f := range n.forms {
			f.reset()
		}
		n.partial = false
		n.message = "Draft discarded"
		return n.current().focusField(0)
	case "esc":
		n.err = n.persist()
		if w.Step() == wizard.GeneralInfo {
			f.blur()
			return Navigate(session.RouteJobs)
		}
		if err := w.Back(n.ctx); err != nil {
			n.err = err
			return nil
		}
		return n.current().focusField(0)
	case "enter":
		if !f.last() {
			return f.next()
		}
		if err := n.persist(); err != nil {
			n.err = err
			return nil
		}
		if w.Step() == wizard.SiteInformation {
			return n.submit(false)
		}
		if err := w.Next(n.ctx); err != nil {
			n.err = err
			return nil
		}
		n.err = nil
		return n.current().focusField(0)
	}

	cmd := f.update(msg)
	if err := n.persist(); err != nil && !apperrors.IsValidation(err) {
		n.err = err
	}
	return cmd
}

func (n *NewJob) submit(resume bool) tea.Cmd {
	n.submitting = true
	n.err = nil
	n.message = ""
	w, ctx := n.deps.Wizard, n.ctx
	return func() tea.Msg {
		var out wizard.Outcome
		var err error
		if resume {
			out, err = w.ResumeAssignment(ctx)
		} else {
			out, err = w.Finish(ctx)
		}
		return wizardDoneMsg{outcome: out, err: err}
	}
}

func (n *NewJob) View() string {
	var b strings.Builder
	w := n.deps.Wizard

	b.WriteString(TitleStyle.Render("NEW JOB"))
	b.WriteString("\n")

	var steps []string
	for s := wizard.GeneralInfo; s <= wizard.SiteInformation; s++ {
		label := fmt.Sprintf("%d. %s", int(s)+1, s)
		if s == w.Step() {
			steps = append(steps, ActiveTabStyle.Render(label))
		} else {
			steps = append(steps, TabStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(steps, " "))
	b.WriteString("\n\n")

	if n.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(n.err)))
		b.WriteString("\n\n")
	}
	if n.message != "" {
		b.WriteString(SuccessStyle.Render(n.message))
		b.WriteString("\n\n")
	}

	if n.submitting {
		b.WriteString(DimStyle.Render("Submitting..."))
		b.WriteString("\n")
		return b.String()
	}

	if f := n.current(); f != nil {
		b.WriteString(f.view())
	}

	help := "[tab] Next field  [enter] Continue  [esc] Back  [ctrl+s] Save draft  [ctrl+x] Discard"
	if w.Step() == wizard.SiteInformation {
		help = "[tab] Next field  [enter] Finish  [esc] Back  [ctrl+s] Save draft  [ctrl+x] Discard"
	}
	if n.partial {
		help += "  [ctrl+r] Retry assignment"
	}
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
