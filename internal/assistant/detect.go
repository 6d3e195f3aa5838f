package assistant

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	musicKeywords = []string{
		"music", "musical", "song", "singing", "rhythm", "melody", "beat",
		"instrument", "piano", "guitar", "drum", "orchestra", "choir",
		"note", "scale", "tempo", "dynamics", "pitch",
	}
	elementaryKeywords = []string{
		"elementary", "primary", "kindergarten", "k-5", "grade 1", "grade 2",
		"grade 3", "grade 4", "grade 5", "young", "children",
	}
	externalTriggers = []string{
		"search the web", "best practices", "include external ideas",
		"go beyond the documents", "latest research", "current trends",
		"what else", "additional ideas", "more information",
		"external sources", "beyond curriculum",
	}
)

type durationPattern struct {
	re     *regexp.Regexp
	factor int
}

// Patterns are tried in order; the first that matches anywhere wins.
var durationPatterns = []durationPattern{
	{regexp.MustCompile(`(\d+)\s*(?:minute|min)s?`), 1},
	{regexp.MustCompile(`(\d+)\s*(?:hour|hr)s?`), 60},
	{regexp.MustCompile(`(\d+)\s*(?:period|class)s?`), 45},
}

// ExtractDuration finds a lesson length in minutes. Hours count 60 minutes
// and class periods 45.
func ExtractDuration(query string) (int, bool) {
	q := strings.ToLower(query)
	for _, p := range durationPatterns {
		m := p.re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n * p.factor, true
	}
	return 0, false
}

// IsElementaryMusic reports whether the query is about music for young
// learners. Both a music and an elementary keyword must appear.
func IsElementaryMusic(query string) bool {
	q := strings.ToLower(query)
	return containsAny(q, musicKeywords) && containsAny(q, elementaryKeywords)
}

// WantsExternalKnowledge reports whether the query asks to go beyond the
// ingested documents.
func WantsExternalKnowledge(query string) bool {
	return containsAny(strings.ToLower(query), externalTriggers)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
