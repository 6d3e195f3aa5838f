package tui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

// modal is a foreground view with a fixed box size.
type modal interface {
	View() string
	size() (w, h int)
}

func (m *filterModal) size() (int, int) { return m.width, m.height }
func (m *lessonModal) size() (int, int) { return m.width, m.height }

// overlay composes fg centered on a screen of screenW x screenH cells, with
// base faded behind it. Unknown screen sizes fall back to 80x24.
func overlay(base string, fg modal, screenW, screenH int) string {
	if screenW <= 0 || screenH <= 0 {
		screenW, screenH = 80, 24
	}
	w, h := fg.size()
	behind := lipgloss.NewLayer(lipgloss.NewStyle().Faint(true).Render(base)).
		Width(screenW).
		Height(screenH)
	front := lipgloss.NewLayer(fg.View()).
		Width(w).
		Height(h).
		X(max(0, (screenW-w)/2)).
		Y(max(0, (screenH-h)/2))
	return lipgloss.NewCanvas(behind, front).Render()
}
