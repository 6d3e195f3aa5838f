package present

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ToastKind selects the colour of a toast.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastError
)

var toastStyles = map[ToastKind]lipgloss.Style{
	ToastInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	ToastSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	ToastWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	ToastError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var toastIcons = map[ToastKind]string{
	ToastInfo:    "ℹ",
	ToastSuccess: "✓",
	ToastWarning: "!",
	ToastError:   "✗",
}

// Toast writes a one-line notification. Styling is applied only when w is a
// terminal.
func Toast(w io.Writer, kind ToastKind, msg string) {
	line := toastIcons[kind] + " " + msg
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		line = toastStyles[kind].Render(line)
	}
	fmt.Fprintln(w, line)
}

// Toastf is Toast with formatting.
func Toastf(w io.Writer, kind ToastKind, format string, args ...any) {
	Toast(w, kind, fmt.Sprintf(format, args...))
}
