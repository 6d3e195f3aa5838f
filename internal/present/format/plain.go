package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mithrel/lessonplan/internal/controller"
	"github.com/mithrel/lessonplan/internal/markdown"
	"github.com/mithrel/lessonplan/pkg/api"
)

// TSV columns: id, created, type, chunks, title
var headerLine = "id\tcreated\ttype\tchunks\ttitle\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func plainRow(l api.Lesson) string {
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%s\n",
		esc(l.ID), l.CreatedAt.Local().Format("2006-01-02 15:04"), esc(l.QueryType), l.ContextUsed, esc(LessonTitle(l)))
}

func WritePlainLessons(w io.Writer, lessons []api.Lesson, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, l := range lessons {
		_, _ = io.WriteString(tw, plainRow(l))
	}
	return tw.Flush()
}

// WritePlainLesson writes the lesson with markers stripped.
func WritePlainLesson(w io.Writer, l api.Lesson, meta bool) error {
	out := markdown.PlainText(l.Response)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if meta {
		if line := controller.Meta(l.AskResponse()); line != "" {
			out += "\n" + line + "\n"
		}
	}
	_, err := io.WriteString(w, out)
	return err
}
