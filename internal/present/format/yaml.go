package format

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mithrel/lessonplan/pkg/api"
)

func WriteYAMLLessons(w io.Writer, lessons []api.Lesson) error {
	if lessons == nil {
		lessons = []api.Lesson{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lessons); err != nil {
		return err
	}
	return enc.Close()
}

func WriteYAMLLesson(w io.Writer, l api.Lesson) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return err
	}
	return enc.Close()
}
