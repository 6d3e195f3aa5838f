package util

import (
	"github.com/sahilm/fuzzy"

	"github.com/mithrel/lessonplan/pkg/api"
)

// ScoreCompletions returns the top N matches for the input string from the candidates list.
func ScoreCompletions(input string, candidates []string, n int) []string {
	if input == "" {
		return candidates
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}

	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Str
	}
	return out
}

// lessonSource exposes the searchable text of each lesson to fuzzy.
type lessonSource []api.Lesson

func (s lessonSource) String(i int) string { return s[i].Query + " " + s[i].QueryType }
func (s lessonSource) Len() int            { return len(s) }

// ScoreLessons ranks lessons by how well their query matches input, best
// first. Lessons that do not match are dropped; n <= 0 keeps every match.
func ScoreLessons(input string, lessons []api.Lesson, n int) []api.Lesson {
	if input == "" {
		return lessons
	}
	matches := fuzzy.FindFrom(input, lessonSource(lessons))
	limit := len(matches)
	if n > 0 && n < limit {
		limit = n
	}
	out := make([]api.Lesson, limit)
	for i := 0; i < limit; i++ {
		out[i] = lessons[matches[i].Index]
	}
	return out
}
