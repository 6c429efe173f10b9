package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/views"
)

var severityOrder = []models.Severity{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
}

const (
	incidentJob = iota
	incidentTitle
	incidentSeverity
	incidentDescription
)

type Safety struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	incidents cache.Result[[]models.SafetyIncident]
	summary   cache.Result[*models.SafetyDashboard]
	jobs      []models.Job
	reporting bool
	form      form
	loader    loader
	loading   bool
	saving    bool
	err       error
	message   string
}

func NewSafety(deps *Deps) *Safety {
	return &Safety{
		deps:   deps,
		loader: newLoader(),
		form: newForm(
			fieldSpec{"Job ID", "42"},
			fieldSpec{"Title", "Slip on wet scaffold"},
			fieldSpec{"Severity", "low, medium, high or critical"},
			fieldSpec{"Description", "What happened"},
		),
	}
}

func (s *Safety) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *Safety) Capturing() bool { return s.reporting }

func (s *Safety) Init(ctx context.Context) tea.Cmd {
	s.ctx = ctx
	s.loading = true
	s.reporting = false
	s.err = nil
	s.message = ""
	return tea.Batch(
		s.loader.start(),
		s.deps.loadIncidents(ctx, false),
		s.deps.loadSafetySummary(ctx, false),
		s.deps.loadJobs(ctx, false),
	)
}

func (s *Safety) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case incidentsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		s.loading = false
		s.loader.stop()
		s.incidents = msg.res
		return nil

	case safetySumMsg:
		if !canceled(msg.res.Err) {
			s.summary = msg.res
		}
		return nil

	case jobsMsg:
		s.jobs = msg.res.Data
		return nil

	case mutationDoneMsg:
		s.saving = false
		if msg.err != nil {
			s.err = msg.err
			return nil
		}
		s.message = msg.what
		return tea.Batch(s.deps.loadIncidents(s.ctx, false), s.deps.loadSafetySummary(s.ctx, false))

	case RefreshMsg:
		return s.Init(s.ctx)

	case tea.KeyMsg:
		if s.reporting {
			return s.handleFormKey(msg)
		}
		switch msg.String() {
		case "a":
			s.reporting = true
			s.form.reset()
			return s.form.focusField(0)
		case "r":
			s.loading = true
			return tea.Batch(
				s.loader.start(),
				s.deps.loadIncidents(s.ctx, true),
				s.deps.loadSafetySummary(s.ctx, true),
			)
		case "q", "esc":
			return Navigate(session.RouteDashboard)
		}
	}

	if s.reporting {
		return s.form.update(msg)
	}
	return s.loader.update(msg)
}

func (s *Safety) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return s.form.next()
	case "shift+tab", "up":
		return s.form.prev()
	case "esc":
		s.reporting = false
		s.form.blur()
		return nil
	case "enter":
		if !s.form.last() {
			return s.form.next()
		}
		jobID, err := parseID(s.form.value(incidentJob))
		if err != nil {
			s.err = apperrors.NewValidationError("Job ID", err.Error())
			return nil
		}
		req := &models.CreateIncidentRequest{
			JobID:         jobID,
			Title:         s.form.value(incidentTitle),
			SeverityLevel: models.Severity(strings.ToLower(s.form.value(incidentSeverity))),
			Description:   s.form.value(incidentDescription),
			IncidentDate:  models.At(s.deps.Now()),
		}
		s.reporting = false
		s.form.blur()
		s.saving = true
		s.err = nil
		data := s.deps.Data
		return mutate(s.ctx, "Incident reported: "+req.Title, func(ctx context.Context) error {
			return data.ReportIncident(ctx, req)
		})
	}
	return s.form.update(msg)
}

func (s *Safety) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("SAFETY"))
	b.WriteString("\n\n")

	if s.loading {
		b.WriteString(s.loader.view("incidents"))
		return b.String()
	}

	if s.incidents.IsError {
		writeErrorState(&b, s.incidents.Err)
		return b.String()
	}

	if s.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(s.err)))
		b.WriteString("\n\n")
	}
	if s.message != "" {
		b.WriteString(SuccessStyle.Render(s.message))
		b.WriteString("\n\n")
	}

	if s.reporting {
		b.WriteString("Report an incident:\n\n")
		b.WriteString(s.form.view())
		b.WriteString(HelpStyle.Render("[tab] Next field  [enter] Submit  [esc] Cancel"))
		return b.String()
	}

	b.WriteString(BoxStyle.Render(s.summaryText()))
	b.WriteString("\n\n")

	if len(s.incidents.Data) == 0 {
		b.WriteString(SuccessStyle.Render("No incidents reported."))
		b.WriteString("\n")
	} else {
		resolver := views.NewResolver(nil, nil, s.jobs)
		for _, inc := range s.incidents.Data {
			style := NormalStyle
			switch inc.SeverityLevel {
			case models.SeverityCritical, models.SeverityHigh:
				style = ErrorStyle
			case models.SeverityMedium:
				style = WarningStyle
			}
			line := fmt.Sprintf("  %-10s %-30s %-22s %-10s %s",
				inc.SeverityLevel,
				inc.Title,
				resolver.JobLabel(inc.JobID),
				inc.Status,
				formatDate(inc.IncidentDate),
			)
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}

	if s.saving {
		b.WriteString(DimStyle.Render("Saving..."))
		b.WriteString("\n")
	}

	help := "[a] Report incident  [r] Refresh  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

// summaryText prefers the server's dashboard and falls back to counting the
// incident list while it loads or if it failed.
func (s *Safety) summaryText() string {
	var lines []string
	if d := s.summary.Data; d != nil && !s.summary.IsError {
		lines = append(lines,
			fmt.Sprintf("Total incidents: %d", d.TotalIncidents),
			fmt.Sprintf("Open incidents: %d", d.OpenIncidents),
		)
		if d.DaysSinceLastIncident != nil {
			lines = append(lines, fmt.Sprintf("Days since last incident: %d", *d.DaysSinceLastIncident))
		}
		for _, sev := range severityOrder {
			lines = append(lines, fmt.Sprintf("  %-9s %d", sev, d.IncidentsBySeverity[sev]))
		}
		return strings.Join(lines, "\n")
	}

	counts := views.IncidentsBySeverity(s.incidents.Data)
	lines = append(lines, fmt.Sprintf("Total incidents: %d", len(s.incidents.Data)))
	for _, sev := range severityOrder {
		lines = append(lines, fmt.Sprintf("  %-9s %d", sev, counts[sev]))
	}
	return strings.Join(lines, "\n")
}
