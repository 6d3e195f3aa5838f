package present

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mithrel/lessonplan/internal/present/format"
	"github.com/mithrel/lessonplan/internal/present/tui"
	"github.com/mithrel/lessonplan/pkg/api"
)

type Mode int

const (
	ModePretty Mode = iota
	ModeHTML
	ModeMarkdown
	ModePlain
	ModeJSON
	ModeYAML
	ModeTUI
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	// Meta adds the metadata line under a single lesson.
	Meta  bool
	Width int
	// Browse is the history browser backend used by ModeTUI lists.
	Browse tui.Backend
}

// ParseMode parses a string like "pretty", "html", "markdown", "plain", "json", "yaml", "tui".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "pretty":
		return ModePretty, true
	case "html":
		return ModeHTML, true
	case "markdown", "md":
		return ModeMarkdown, true
	case "plain":
		return ModePlain, true
	case "json":
		return ModeJSON, true
	case "yaml", "yml":
		return ModeYAML, true
	case "tui":
		return ModeTUI, true
	default:
		return ModePretty, false
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// ForOutput downgrades interactive modes when w is not a terminal: pretty
// becomes markdown, tui becomes plain.
func ForOutput(m Mode, w io.Writer) Mode {
	f, ok := w.(*os.File)
	if ok && IsTerminal(f) {
		return m
	}
	switch m {
	case ModePretty:
		return ModeMarkdown
	case ModeTUI:
		return ModePlain
	}
	return m
}

// TermWidth returns the width of f or fallback.
func TermWidth(f *os.File, fallback int) int {
	if f == nil {
		return fallback
	}
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// RenderLesson renders a single lesson according to options.
func RenderLesson(w io.Writer, l api.Lesson, opts Options) error {
	switch opts.Mode {
	case ModeHTML:
		return format.WriteHTMLLesson(w, l, opts.Meta)
	case ModeMarkdown:
		return format.WriteMarkdownLesson(w, l, opts.Meta)
	case ModePlain:
		return format.WritePlainLesson(w, l, opts.Meta)
	case ModeJSON:
		return format.WriteJSONLesson(w, l, opts.JSONIndent)
	case ModeYAML:
		return format.WriteYAMLLesson(w, l)
	default:
		return format.WritePrettyLesson(w, l, opts.Meta, opts.Width)
	}
}

// RenderLessons renders a list of lessons according to options.
func RenderLessons(ctx context.Context, w io.Writer, lessons []api.Lesson, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONLessons(w, lessons, opts.JSONIndent)
	case ModeYAML:
		return format.WriteYAMLLessons(w, lessons)
	case ModeHTML:
		return format.WriteHTMLLessons(w, lessons)
	case ModeTUI:
		if opts.Browse != nil {
			return tui.RenderTable(ctx, lessons, opts.Browse, opts.Headers)
		}
		return format.WritePlainLessons(w, lessons, opts.Headers)
	default:
		// Pretty and markdown lists use the aligned plain table.
		return format.WritePlainLessons(w, lessons, opts.Headers)
	}
}
