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

type Contracts struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	contracts cache.Result[[]models.SubcontractorContract]
	jobs      []models.Job
	teams     []models.Team
	loader    loader
	loading   bool
}

func NewContracts(deps *Deps) *Contracts {
	return &Contracts{
		deps:   deps,
		loader: newLoader(),
	}
}

func (c *Contracts) SetSize(width, height int) {
	c.width = width
	c.height = height
}

func (c *Contracts) Capturing() bool { return false }

func (c *Contracts) Init(ctx context.Context) tea.Cmd {
	c.ctx = ctx
	c.loading = true
	return tea.Batch(
		c.loader.start(),
		c.deps.loadContracts(ctx, false),
		c.deps.loadJobs(ctx, false),
		c.deps.loadTeams(ctx, false),
	)
}

func (c *Contracts) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case contractsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		c.loading = false
		c.loader.stop()
		c.contracts = msg.res
		return nil

	case jobsMsg:
		c.jobs = msg.res.Data
		return nil

	case teamsMsg:
		c.teams = msg.res.Data
		return nil

	case RefreshMsg:
		return c.Init(c.ctx)

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			c.loading = true
			return tea.Batch(c.loader.start(), c.deps.loadContracts(c.ctx, true))
		case "q", "esc":
			return Navigate(session.RouteDashboard)
		}
	}

	return c.loader.update(msg)
}

func (c *Contracts) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("SUBCONTRACTOR CONTRACTS"))
	b.WriteString("\n\n")

	if c.loading {
		b.WriteString(c.loader.view("contracts"))
		return b.String()
	}

	if c.contracts.IsError {
		writeErrorState(&b, c.contracts.Err)
		return b.String()
	}

	if len(c.contracts.Data) == 0 {
		b.WriteString(DimStyle.Render("No subcontractor contracts yet."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r] Refresh  [q] Back"))
		return b.String()
	}

	resolver := views.NewResolver(c.teams, nil, c.jobs)
	var value, paid, outstanding float64
	for _, ct := range c.contracts.Data {
		who := "-"
		if ct.TeamID != nil {
			who = resolver.TeamLabel(*ct.TeamID)
		}
		title := ct.Title
		if title == "" {
			title = fmt.Sprintf("Contract %s", ct.ID)
		}
		style := NormalStyle
		if ct.Outstanding > 0 {
			style = WarningStyle
		}
		line := fmt.Sprintf("  %-26s %-22s %-16s %12s %12s %12s",
			title,
			resolver.JobLabel(ct.JobID),
			who,
			formatMoney(ct.TotalValue.Float()),
			formatMoney(ct.TotalPaid.Float()),
			formatMoney(ct.Outstanding.Float()),
		)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
		value += ct.TotalValue.Float()
		paid += ct.TotalPaid.Float()
		outstanding += ct.Outstanding.Float()
	}

	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(fmt.Sprintf(
		"Contract value: %s\nPaid: %s\nOutstanding: %s",
		formatMoney(value), formatMoney(paid), formatMoney(outstanding),
	)))
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render("[r] Refresh  [q] Back"))
	return b.String()
}
