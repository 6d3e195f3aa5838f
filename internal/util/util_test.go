package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/lessonplan/pkg/api"
)

func TestParseTimeExpr(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2h", now.Add(-2 * time.Hour)},
		{"3d", now.AddDate(0, 0, -3)},
		{"2w", now.AddDate(0, 0, -14)},
		{"1mo", now.AddDate(0, -1, 0)},
		{"2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2025-01-02T08:30", time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)},
		{"90m", now.Add(-90 * time.Minute)},
		{"today", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"Yesterday", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseTimeExpr(tc.in, now)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %s want %s", tc.in, got, tc.want)
	}
	for _, bad := range []string{"", "xd", "3x", "-2h", "last week"} {
		_, err := parseTimeExpr(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseTimeRange_Swaps(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s, u, err := ParseTimeRange("1d", "3d", now)
	require.NoError(t, err)
	assert.True(t, s.Before(u))

	s, u, err = ParseTimeRange("", "", now)
	require.NoError(t, err)
	assert.True(t, s.IsZero())
	assert.True(t, u.IsZero())

	_, _, err = ParseTimeRange("nope", "", now)
	assert.ErrorContains(t, err, "invalid --since")
}

func TestScoreCompletions(t *testing.T) {
	ids := []string{"m1abc", "m2xyz", "zz9"}
	assert.Equal(t, ids, ScoreCompletions("", ids, 2))
	assert.Equal(t, []string{"m2xyz"}, ScoreCompletions("xyz", ids, 0))
	assert.Nil(t, ScoreCompletions("qqq", ids, 0))
}

func TestScoreLessons(t *testing.T) {
	lessons := []api.Lesson{
		{ID: "a", Query: "Fractions with pizza for grade 4"},
		{ID: "b", Query: "Rhythm and steady beat for second grade music", QueryType: api.QueryTypeElementaryMusic},
		{ID: "c", Query: "Photosynthesis lab"},
	}
	got := ScoreLessons("rhythm", lessons, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got = ScoreLessons("elementary_music", lessons, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	assert.Len(t, ScoreLessons("", lessons, 1), 3)
	assert.Empty(t, ScoreLessons("zzzzqqq", lessons, 0))
}
