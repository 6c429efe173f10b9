package screens

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fieldSpec struct {
	label       string
	placeholder string
}

type formField struct {
	label string
	input textinput.Model
}

// form is a vertical list of text inputs with one focused at a time.
type form struct {
	fields []formField
	focus  int
}

func newForm(specs ...fieldSpec) form {
	f := form{fields: make([]formField, len(specs))}
	for i, s := range specs {
		ti := textinput.New()
		ti.Placeholder = s.placeholder
		ti.CharLimit = 300
		ti.Width = 40
		f.fields[i] = formField{label: s.label, input: ti}
	}
	return f
}

func (f *form) focusField(i int) tea.Cmd {
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	return f.fields[i].input.Focus()
}

func (f *form) next() tea.Cmd {
	return f.focusField((f.focus + 1) % len(f.fields))
}

func (f *form) prev() tea.Cmd {
	return f.focusField((f.focus - 1 + len(f.fields)) % len(f.fields))
}

func (f *form) last() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) blur() {
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
}

func (f *form) reset() {
	for j := range f.fields {
		f.fields[j].input.SetValue("")
	}
	f.focus = 0
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) set(i int, v string) {
	f.fields[i].input.SetValue(v)
}

func (f *form) view() string {
	var b strings.Builder
	for i, field := range f.fields {
		label := NormalStyle.Render(field.label)
		if i == f.focus {
			label = SelectedStyle.Render(field.label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(field.input.View())
		b.WriteString("\n")
	}
	return b.String()
}
