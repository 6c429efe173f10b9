package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/constructsync/dashboard/internal/cache"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/views"
)

var variationFilters = []models.VariationStatus{
	"",
	models.VariationOpen,
	models.VariationInProgress,
	models.VariationCompleted,
}

const (
	variationJob = iota
	variationTitle
	variationAmount
	variationPriority
	variationPricing
)

type variationsMode int

const (
	variationsModeList variationsMode = iota
	variationsModeAdd
	variationsModeDelete
)

type Variations struct {
	deps   *Deps
	ctx    context.Context
	width  int
	height int

	variations cache.Result[[]models.Variation]
	jobs       []models.Job
	filter     int
	cursor     int
	mode       variationsMode
	form       form
	loader     loader
	loading    bool
	saving     bool
	err        error
	message    string
}

func NewVariations(deps *Deps) *Variations {
	return &Variations{
		deps:   deps,
		loader: newLoader(),
		form: newForm(
			fieldSpec{"Job ID", "42"},
			fieldSpec{"Title", "Extra power outlet"},
			fieldSpec{"Client amount", "0.00"},
			fieldSpec{"Priority", "low, medium or high"},
			fieldSpec{"Pricing model", "fixed, hourly or hybrid"},
		),
	}
}

func (v *Variations) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *Variations) Capturing() bool { return v.mode == variationsModeAdd }

func (v *Variations) Init(ctx context.Context) tea.Cmd {
	v.ctx = ctx
	v.loading = true
	v.mode = variationsModeList
	v.err = nil
	v.message = ""
	return tea.Batch(v.loader.start(), v.deps.loadVariations(ctx, false), v.deps.loadJobs(ctx, false))
}

func (v *Variations) visible() []models.Variation {
	return views.FilterVariations(v.variations.Data, variationFilters[v.filter])
}

func (v *Variations) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case variationsMsg:
		if canceled(msg.res.Err) {
			return nil
		}
		v.loading = false
		v.loader.stop()
		v.variations = msg.res
		v.cursor = clampCursor(v.cursor, len(v.visible()))
		return nil

	case jobsMsg:
		v.jobs = msg.res.Data
		return nil

	case mutationDoneMsg:
		v.saving = false
		if msg.err != nil {
			v.err = msg.err
			return nil
		}
		v.message = msg.what
		return v.deps.loadVariations(v.ctx, false)

	case RefreshMsg:
		return v.Init(v.ctx)

	case tea.KeyMsg:
		switch v.mode {
		case variationsModeAdd:
			return v.handleFormKey(msg)
		case variationsModeDelete:
			return v.handleDeleteKey(msg)
		}
		return v.handleListKey(msg)
	}

	if v.mode == variationsModeAdd {
		return v.form.update(msg)
	}
	return v.loader.update(msg)
}

func (v *Variations) handleListKey(msg tea.KeyMsg) tea.Cmd {
	visible := v.visible()
	switch msg.String() {
	case "up", "k", "down", "j":
		v.cursor = moveCursor(v.cursor, len(visible), msg.String())
	case "f":
		v.filter = (v.filter + 1) % len(variationFilters)
		v.cursor = 0
	case "a":
		v.mode = variationsModeAdd
		v.form.reset()
		return v.form.focusField(0)
	case "d":
		if len(visible) > 0 {
			v.mode = variationsModeDelete
		}
	case "r":
		v.loading = true
		return tea.Batch(v.loader.start(), v.deps.loadVariations(v.ctx, true))
	case "q", "esc":
		return Navigate(session.RouteDashboard)
	}
	return nil
}

func (v *Variations) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return v.form.next()
	case "shift+tab", "up":
		return v.form.prev()
	case "esc":
		v.mode = variationsModeList
		v.form.blur()
		return nil
	case "enter":
		if !v.form.last() {
			return v.form.next()
		}
		req, err := v.request()
		if err != nil {
			v.err = err
			return nil
		}
		v.mode = variationsModeList
		v.form.blur()
		v.saving = true
		v.err = nil
		data := v.deps.Data
		return mutate(v.ctx, "Added variation: "+req.Title, func(ctx context.Context) error {
			return data.CreateVariation(ctx, req)
		})
	}
	return v.form.update(msg)
}

func (v *Variations) request() (*models.CreateVariationRequest, error) {
	jobID, err := parseID(v.form.value(variationJob))
	if err != nil {
		return nil, apperrors.NewValidationError("Job ID", err.Error())
	}
	var amount float64
	if raw := v.form.value(variationAmount); raw != "" {
		if amount, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, apperrors.NewValidationError("Client amount", "must be a number")
		}
	}
	priority := models.Priority(strings.ToLower(v.form.value(variationPriority)))
	if priority == "" {
		priority = models.PriorityMedium
	}
	pricing := models.PricingModel(strings.ToLower(v.form.value(variationPricing)))
	if pricing == "" {
		pricing = models.PricingFixed
	}
	return &models.CreateVariationRequest{
		JobID:        jobID,
		Title:        v.form.value(variationTitle),
		Status:       models.VariationOpen,
		Priority:     priority,
		PricingModel: pricing,
		ClientAmount: models.Number(amount),
	}, nil
}

func (v *Variations) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		variation := v.visible()[v.cursor]
		v.mode = variationsModeList
		v.saving = true
		v.err = nil
		data := v.deps.Data
		return mutate(v.ctx, "Deleted variation: "+variation.Title, func(ctx context.Context) error {
			return data.DeleteVariation(ctx, variation.ID)
		})
	case "n", "N", "esc":
		v.mode = variationsModeList
	}
	return nil
}

func (v *Variations) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("VARIATIONS"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.loader.view("variations"))
		return b.String()
	}

	if v.variations.IsError {
		writeErrorState(&b, v.variations.Err)
		return b.String()
	}

	if v.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + apperrors.UserMessage(v.err)))
		b.WriteString("\n\n")
	}
	if v.message != "" {
		b.WriteString(SuccessStyle.Render(v.message))
		b.WriteString("\n\n")
	}

	if v.mode == variationsModeAdd {
		b.WriteString("New variation:\n\n")
		b.WriteString(v.form.view())
		b.WriteString(HelpStyle.Render("[tab] Next field  [enter] Save  [esc] Cancel"))
		return b.String()
	}

	visible := v.visible()
	if v.mode == variationsModeDelete && len(visible) > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Delete variation '%s'? (y/n)", visible[v.cursor].Title)))
		b.WriteString("\n")
		return b.String()
	}

	filter := "all"
	if f := variationFilters[v.filter]; f != "" {
		filter = string(f)
	}
	b.WriteString(DimStyle.Render("Showing: " + filter))
	b.WriteString("\n\n")

	if len(visible) == 0 {
		if len(v.variations.Data) == 0 {
			b.WriteString(DimStyle.Render("No variations yet. Press 'a' to add one."))
		} else {
			b.WriteString(DimStyle.Render("No variations with this status."))
		}
		b.WriteString("\n")
	} else {
		resolver := views.NewResolver(nil, nil, v.jobs)
		var total float64
		for i, variation := range visible {
			cursor := "  "
			style := NormalStyle
			if i == v.cursor {
				cursor = "> "
				style = SelectedStyle
			}
			line := fmt.Sprintf("%s%-30s %-22s %-12s %-7s %12s",
				cursor,
				variation.Title,
				resolver.JobLabel(variation.JobID),
				variation.Status,
				variation.Priority,
				formatMoney(variation.ClientAmount.Float()),
			)
			total += variation.ClientAmount.Float()
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("\nTotal: %s\n", formatMoney(total)))
	}

	if v.saving {
		b.WriteString(DimStyle.Render("Saving..."))
		b.WriteString("\n")
	}

	help := "[a] Add  [d] Delete  [f] Filter  [r] Refresh  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
