package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// filterModal is a foreground modal with inputs to filter the history view.
type filterModal struct {
	search textinput.Model
	since  textinput.Model
	until  textinput.Model
	width  int
	height int
	padX   int
	padY   int
	box    lipglossv2.Style
	focus  int
}

func newFilterModal(cur filterState, termW, termH int) *filterModal {
	m := &filterModal{padX: 2, padY: 1}
	m.search = newFilterInput("search: ", "rhythm grade 2", cur.search)
	m.since = newFilterInput("since: ", "2w | 2025-09-01", cur.since)
	m.until = newFilterInput("until: ", "1d | 2025-10-01T18:00", cur.until)
	m.setFocus(0)
	m.resizeForTerm(termW, termH)
	return m
}

func newFilterInput(prompt, placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.SetValue(value)
	return ti
}

func (m *filterModal) inputs() []*textinput.Model {
	return []*textinput.Model{&m.search, &m.since, &m.until}
}

func (m *filterModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * 0.6)
	if termW < 80 {
		w = termW - 4
	}
	if w < 46 {
		w = max(42, termW-2)
	}
	if w > 90 {
		w = 90
	}
	h := 11
	if termH < 14 {
		h = max(9, termH-1)
	}
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := max(12, w-2-m.padX*2)
	for _, in := range m.inputs() {
		in.Width = max(12, innerW-lipgloss.Width(in.Prompt))
	}
}

func (m *filterModal) setFocus(idx int) {
	m.focus = idx
	for i, in := range m.inputs() {
		if i == idx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m *filterModal) values() filterState {
	return filterState{
		search: m.search.Value(),
		since:  strings.TrimSpace(m.since.Value()),
		until:  strings.TrimSpace(m.until.Value()),
	}
}

func (m *filterModal) update(msg tea.Msg) (*filterModal, tea.Cmd) {
	n := len(m.inputs())
	if x, ok := msg.(tea.KeyMsg); ok {
		switch x.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % n)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + n - 1) % n)
			return m, nil
		}
	}
	in := m.inputs()[m.focus]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m *filterModal) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Filter lessons")
	help := lipgloss.NewStyle().Faint(true).Render("enter=apply • esc=cancel • tab=next • ctrl+x=clear")
	body := strings.Join([]string{
		header,
		"",
		m.search.View(),
		m.since.View(),
		m.until.View(),
		"",
		help,
	}, "\n")
	return m.box.Render(body)
}
