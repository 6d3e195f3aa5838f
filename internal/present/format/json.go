package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/lessonplan/pkg/api"
)

func jsonEncoder(w io.Writer, indent bool) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc
}

// WriteJSONLessons writes a JSON array; no lessons is [] rather than null.
func WriteJSONLessons(w io.Writer, lessons []api.Lesson, indent bool) error {
	if lessons == nil {
		lessons = []api.Lesson{}
	}
	return jsonEncoder(w, indent).Encode(lessons)
}

// WriteJSONLesson writes l with its markdown response unescaped.
func WriteJSONLesson(w io.Writer, l api.Lesson, indent bool) error {
	return jsonEncoder(w, indent).Encode(l)
}
