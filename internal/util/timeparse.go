package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var absoluteLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// calendarUnits step back whole calendar units; anything else goes through
// time.ParseDuration, where "m" keeps meaning minutes.
var calendarUnits = map[string]func(t time.Time, n int) time.Time{
	"mo": func(t time.Time, n int) time.Time { return t.AddDate(0, -n, 0) },
	"w":  func(t time.Time, n int) time.Time { return t.AddDate(0, 0, -7*n) },
	"d":  func(t time.Time, n int) time.Time { return t.AddDate(0, 0, -n) },
}

// parseTimeExpr resolves a history filter bound against now. Accepted forms:
// "today", "yesterday", "<n>d|w|mo", any Go duration ("90m", "2h") and the
// absolute layouts above.
func parseTimeExpr(expr string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	switch s {
	case "":
		return time.Time{}, fmt.Errorf("empty time expression")
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }); i > 0 {
		if step, ok := calendarUnits[s[i:]]; ok {
			n, err := strconv.Atoi(s[:i])
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid time expression: %q", expr)
			}
			return step(now, n), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(expr), now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time expression: %q", expr)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseTimeRange parses the --since/--until pair relative to now. Either may
// be empty; a reversed pair is swapped.
func ParseTimeRange(since, until string, now time.Time) (from, to time.Time, err error) {
	if since != "" {
		if from, err = parseTimeExpr(since, now); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since: %w", err)
		}
	}
	if until != "" {
		if to, err = parseTimeExpr(until, now); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		from, to = to, from
	}
	return from, to, nil
}
