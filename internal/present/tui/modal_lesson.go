package tui

import (
	"bytes"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"

	"github.com/mithrel/lessonplan/internal/present/format"
	"github.com/mithrel/lessonplan/pkg/api"
)

// lessonModal shows a rendered lesson inside a scrollable viewport.
type lessonModal struct {
	lesson  api.Lesson
	vp      viewport.Model
	width   int
	height  int
	padX    int
	padY    int
	box     lipglossv2.Style
	content string
}

func newLessonModal(l api.Lesson, termW, termH int) *lessonModal {
	m := &lessonModal{lesson: l, padX: 2, padY: 1}
	m.resizeForTerm(termW, termH)
	return m
}

func (m *lessonModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * 0.7)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(32, termW-2)
	}
	h := int(float64(termH) * 0.8)
	if termH < 20 {
		h = termH - 2
	}
	if h < 10 {
		h = max(8, termH-1)
	}
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := max(10, w-2-m.padX*2)
	innerH := max(5, h-2-m.padY*2)
	if m.vp.Width == 0 {
		m.vp = viewport.New(innerW, innerH)
	} else {
		m.vp.Width = innerW
		m.vp.Height = innerH
	}
	// Re-render so glamour wraps to the new width.
	var buf bytes.Buffer
	if err := format.WritePrettyLesson(&buf, m.lesson, true, innerW); err != nil {
		m.content = m.lesson.Response
	} else {
		m.content = buf.String()
	}
	m.vp.SetContent(m.content)
}

func (m *lessonModal) update(msg tea.Msg) (*lessonModal, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *lessonModal) View() string { return m.box.Render(m.vp.View()) }
