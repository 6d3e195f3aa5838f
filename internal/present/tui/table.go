package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/lessonplan/internal/present/format"
	"github.com/mithrel/lessonplan/pkg/api"
)

// RenderTable opens an interactive Bubble Tea table to browse lesson history.
// Pressing enter prints the selected lesson after the program exits.
func RenderTable(ctx context.Context, lessons []api.Lesson, backend Backend, headers bool) error {
	m := newModel(ctx, lessons, backend, headers)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok {
		if sel, ok := fm.selected(); ok && fm.show {
			return format.WritePrettyLesson(os.Stdout, sel, true, 0)
		}
	}
	return nil
}

type model struct {
	ctx          context.Context
	backend      Backend
	table        table.Model
	all          []api.Lesson
	lessons      []api.Lesson
	filter       filterState
	filterModal  *filterModal
	preview      *lessonModal
	show         bool
	headers      bool
	width        int
	height       int
	status       string
	lastDuration time.Duration
	now          func() time.Time
}

func newModel(ctx context.Context, lessons []api.Lesson, backend Backend, headers bool) model {
	m := model{
		ctx:     ctx,
		backend: backend,
		all:     lessons,
		lessons: lessons,
		headers: headers,
		now:     time.Now,
	}
	m.initTable()
	return m
}

func (m *model) initTable() {
	cols := m.columnsFor(m.headers, 16, 16, 16, 50)
	m.table = table.New(table.WithColumns(cols), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
}

func (m *model) updateRows() {
	rows := make([]table.Row, 0, len(m.lessons))
	for _, l := range m.lessons {
		rows = append(rows, table.Row{
			l.ID,
			l.CreatedAt.Local().Format("2006-01-02 15:04"),
			l.QueryType,
			format.LessonTitle(l),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m model) selected() (api.Lesson, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.lessons) {
		return api.Lesson{}, false
	}
	return m.lessons[idx], true
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteResultMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		m.all = removeLesson(m.all, msg.id)
		m.lessons = removeLesson(m.lessons, msg.id)
		m.updateRows()
		m.status = fmt.Sprintf("Deleted %s", msg.id)
		return m, nil
	case listResultMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Reload failed: %v", msg.err)
			return m, nil
		}
		m.all = msg.lessons
		m.lessons = m.filter.apply(m.all)
		m.table.SetCursor(0)
		m.updateRows()
		if m.filter.active() {
			m.status = fmt.Sprintf("Filtered %d of %d", len(m.lessons), len(m.all))
		} else {
			m.status = "Reloaded"
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		if m.filterModal != nil {
			m.filterModal.resizeForTerm(msg.Width, msg.Height)
		}
		if m.preview != nil {
			m.preview.resizeForTerm(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if m.filterModal != nil {
			return m.updateFilter(msg)
		}
		if m.preview != nil {
			switch msg.String() {
			case "esc", "q", "p", "ctrl+q":
				m.preview = nil
				return m, nil
			}
			var cmd tea.Cmd
			m.preview, cmd = m.preview.update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "enter":
			if _, ok := m.selected(); ok {
				m.show = true
			}
			return m, tea.Quit
		case "p", " ":
			if sel, ok := m.selected(); ok {
				m.preview = newLessonModal(sel, m.width, m.height)
			}
			return m, nil
		case "/", "f":
			m.filterModal = newFilterModal(m.filter, m.width, m.height)
			return m, nil
		case "r":
			return m, m.reload()
		case "d":
			sel, ok := m.selected()
			if !ok || m.backend == nil {
				return m, nil
			}
			m.status = fmt.Sprintf("Deleting %s…", sel.ID)
			return m, deleteCmd(m.ctx, m.backend, sel.ID)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+q":
		m.filterModal = nil
		return m, nil
	case "ctrl+x":
		m.filterModal = newFilterModal(filterState{}, m.width, m.height)
		return m, nil
	case "enter":
		next := m.filterModal.values()
		m.filterModal = nil
		timeChanged := next.since != m.filter.since || next.until != m.filter.until
		m.filter = next
		if timeChanged {
			return m, m.reload()
		}
		m.lessons = m.filter.apply(m.all)
		m.table.SetCursor(0)
		m.updateRows()
		m.status = fmt.Sprintf("Filtered %d of %d", len(m.lessons), len(m.all))
		return m, nil
	}
	var cmd tea.Cmd
	m.filterModal, cmd = m.filterModal.update(msg)
	return m, cmd
}

// reload lists the history again with the current time filter.
func (m *model) reload() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	q, err := m.filter.query(m.now())
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = "Loading…"
	return listCmd(m.ctx, m.backend, q)
}

func removeLesson(lessons []api.Lesson, id string) []api.Lesson {
	out := lessons[:0:0]
	for _, l := range lessons {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

func (m model) renderFooter() string {
	left := "↑/↓ navigate • enter=show • p=preview • /=filter • r=reload • d=delete • q=exit"

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration.Round(time.Millisecond))
		} else {
			right = m.status + " • "
		}
	}
	right += fmt.Sprintf("%d lessons ", len(m.lessons))

	width := m.table.Width()
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		space = 1
	}

	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	var base string
	if len(m.lessons) == 0 {
		base = "(no lessons)\n" + m.renderFooter() + "\n"
	} else {
		base = m.table.View() + "\n" + m.renderFooter() + "\n"
	}
	switch {
	case m.filterModal != nil:
		return overlay(base, m.filterModal, m.width, m.height)
	case m.preview != nil:
		return overlay(base, m.preview, m.width, m.height)
	}
	return base
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := max(6, m.height-1)
	m.table.SetHeight(h)
	m.table.SetWidth(m.width)
	pad := 4
	avail := m.width - pad
	if avail < 40 {
		return
	}
	idW := 16
	if avail < 90 {
		idW = 10
	}
	createdW := 16
	typeW := 16
	titleW := avail - idW - createdW - typeW
	if titleW < 12 {
		typeW = 0
		titleW = max(12, avail-idW-createdW)
	}
	m.table.SetColumns(m.columnsFor(m.headers, idW, createdW, typeW, titleW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

// columnsFor returns columns with or without titles based on headers flag.
func (m *model) columnsFor(headers bool, idW, createdW, typeW, titleW int) []table.Column {
	titles := []string{"ID", "Created", "Type", "Title"}
	if !headers {
		titles = []string{"", "", "", ""}
	}
	return []table.Column{
		{Title: titles[0], Width: idW},
		{Title: titles[1], Width: createdW},
		{Title: titles[2], Width: typeW},
		{Title: titles[3], Width: titleW},
	}
}
