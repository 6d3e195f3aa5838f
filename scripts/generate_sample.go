package main

import (
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	grades   = []string{"Kindergarten", "Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5"}
	subjects = map[string][]string{
		"music":   {"steady beat", "rhythm patterns", "melody contour", "dynamics", "tempo changes", "call and response singing"},
		"math":    {"counting to 100", "place value", "fractions on a number line", "measuring length", "area models", "skip counting"},
		"science": {"plant life cycles", "states of matter", "weather patterns", "magnets", "animal habitats", "the water cycle"},
	}
	verbs = []string{"explore", "practice", "compare", "describe", "demonstrate", "create"}
	tools = []string{"rhythm sticks", "manipulatives", "anchor charts", "partner talk", "exit tickets", "movement scarves", "number lines"}
)

// Writes deterministic curriculum documents for `lessonplan-cli ingest`.
func main() {
	out := flag.String("out", "sample-docs", "output directory")
	n := flag.Int("n", 12, "documents per subject")
	flag.Parse()

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))

	for _, subject := range []string{"math", "music", "science"} {
		topics := subjects[subject]
		dir := filepath.Join(*out, subject)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
		for i := 0; i < *n; i++ {
			grade := grades[mr.Intn(len(grades))]
			topic := topics[mr.Intn(len(topics))]
			var b strings.Builder
			fmt.Fprintf(&b, "# %s %s: %s\n\n", grade, subject, topic)
			for p := 0; p < 3+mr.Intn(4); p++ {
				fmt.Fprintf(&b, "Students %s %s using %s and %s. ", pick(mr, verbs), topic, pick(mr, tools), pick(mr, tools))
				fmt.Fprintf(&b, "Teachers check understanding with %s before moving on.\n\n", pick(mr, tools))
			}
			name := fmt.Sprintf("%s-%03d.md", strings.ReplaceAll(strings.ToLower(grade), " ", "-"), i+1)
			if err := os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644); err != nil {
				panic(err)
			}
		}
	}
	fmt.Printf("wrote %d documents to %s\n", *n*len(subjects), *out)
}

func pick(r *mrand.Rand, pool []string) string {
	return pool[r.Intn(len(pool))]
}
