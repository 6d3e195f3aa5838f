package tui

import (
	"strings"
	"time"

	"github.com/mithrel/lessonplan/internal/util"
	"github.com/mithrel/lessonplan/pkg/api"
)

// filterState is what the filter modal last applied.
type filterState struct {
	search string
	since  string
	until  string
}

func (f filterState) active() bool {
	return strings.TrimSpace(f.search) != "" || f.since != "" || f.until != ""
}

// query converts the time part of the filter into a list query.
func (f filterState) query(now time.Time) (api.ListQuery, error) {
	s, u, err := util.ParseTimeRange(strings.TrimSpace(f.since), strings.TrimSpace(f.until), now)
	if err != nil {
		return api.ListQuery{}, err
	}
	return api.ListQuery{Since: s, Until: u}, nil
}

// apply narrows lessons by the fuzzy search term.
func (f filterState) apply(lessons []api.Lesson) []api.Lesson {
	return util.ScoreLessons(strings.TrimSpace(f.search), lessons, 0)
}
