package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/lessonplan/internal/controller"
	"github.com/mithrel/lessonplan/pkg/api"
)

// WritePrettyLesson renders the raw lesson text for the terminal using glamour.
func WritePrettyLesson(w io.Writer, l api.Lesson, meta bool, width int) error {
	if width <= 0 || width > 120 {
		width = 100
	}
	md := strings.TrimSpace(l.Response) + "\n"
	if meta {
		if line := controller.Meta(l.AskResponse()); line != "" {
			md += "\n---\n\n*" + line + "*\n"
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

// WriteMarkdownLesson writes the raw lesson text, the same bytes a download saves.
func WriteMarkdownLesson(w io.Writer, l api.Lesson, meta bool) error {
	out := l.Response
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if meta {
		if line := controller.Meta(l.AskResponse()); line != "" {
			out += "\n<!-- " + line + " -->\n"
		}
	}
	_, err := io.WriteString(w, out)
	return err
}
