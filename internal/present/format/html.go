package format

import (
	"html"
	"io"
	"strings"

	"github.com/mithrel/lessonplan/internal/controller"
	"github.com/mithrel/lessonplan/internal/markdown"
	"github.com/mithrel/lessonplan/pkg/api"
)

// WriteHTMLLesson writes the rendered markup of a lesson.
func WriteHTMLLesson(w io.Writer, l api.Lesson, meta bool) error {
	var b strings.Builder
	b.WriteString(markdown.Render(l.Response))
	b.WriteByte('\n')
	if meta {
		if line := controller.Meta(l.AskResponse()); line != "" {
			b.WriteString(`<p class="meta">` + html.EscapeString(line) + "</p>\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteHTMLLessons writes a table of lessons with the title of each.
func WriteHTMLLessons(w io.Writer, lessons []api.Lesson) error {
	var b strings.Builder
	b.WriteString("<table><thead><tr><th>ID</th><th>Created</th><th>Type</th><th>Title</th></tr></thead><tbody>")
	for _, l := range lessons {
		b.WriteString("<tr><td>")
		b.WriteString(html.EscapeString(l.ID))
		b.WriteString("</td><td>")
		b.WriteString(l.CreatedAt.UTC().Format("2006-01-02 15:04"))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(l.QueryType))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(LessonTitle(l)))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</tbody></table>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// LessonTitle is the first heading of the lesson, or its query.
func LessonTitle(l api.Lesson) string {
	if t := markdown.Parse(l.Response).Title(); t != "" {
		return t
	}
	return strings.Join(strings.Fields(l.Query), " ")
}
