// Package assistant turns a lesson request into a structured lesson plan
// using retrieved curriculum chunks and fixed plan templates.
package assistant

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/mithrel/lessonplan/pkg/api"
)

const (
	HeaderDistrict  = "### 📚 Based on District Documents:"
	HeaderExternal  = "### 🌐 Supplemented from General Knowledge:"
	HeaderAvailable = "### 📚 Based on Available Resources:"

	AskDurationPrompt = "How long should the lesson be? Please specify the duration (e.g., 30 minutes, 1 hour)."

	// extensionMinutes is added to every plan for the extension activity.
	extensionMinutes = 5
	themeLength      = 100
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Retriever finds curriculum chunks relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]api.Chunk, error)
}

type Assistant struct {
	retriever Retriever
	maxChunks int
	logger    *log.Logger
	now       func() time.Time
}

// New returns an Assistant. A nil retriever disables document grounding.
func New(r Retriever, maxChunks int, logger *log.Logger) *Assistant {
	if maxChunks <= 0 {
		maxChunks = 3
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Assistant{retriever: r, maxChunks: maxChunks, logger: logger, now: time.Now}
}

// Process answers one lesson request. Failures never escape: retrieval
// errors degrade to an ungrounded plan and rendering errors are reported in
// the Error field.
func (a *Assistant) Process(ctx context.Context, query, duration string) api.AskResponse {
	a.logger.Printf("assistant: processing query: %s", truncate(query, 100))

	if d := strings.TrimSpace(duration); d != "" {
		query = query + " Duration: " + d
	}
	external := WantsExternalKnowledge(query)

	var chunks []api.Chunk
	if !external && a.retriever != nil {
		found, err := a.retriever.Search(ctx, query, a.maxChunks)
		if err != nil {
			a.logger.Printf("assistant: retrieve context: %v", err)
		} else {
			chunks = found
		}
	}

	queryType := api.QueryTypeGeneral
	if IsElementaryMusic(query) {
		queryType = api.QueryTypeElementaryMusic
	}

	resp := api.AskResponse{
		ContextUsed:       len(chunks),
		Sources:           []string{},
		QueryType:         queryType,
		ExternalKnowledge: external,
		Timestamp:         a.now().Format(time.RFC3339Nano),
	}
	for _, c := range chunks {
		resp.Sources = append(resp.Sources, c.Source)
	}

	text, err := a.generate(query, chunks, external)
	if err != nil {
		a.logger.Printf("assistant: generate: %v", err)
		resp.Response = "I apologize, but I encountered an error while generating your lesson plan. Please try again."
		resp.Error = err.Error()
		return resp
	}
	resp.Response = text
	return resp
}

func (a *Assistant) generate(query string, chunks []api.Chunk, external bool) (string, error) {
	minutes, ok := ExtractDuration(query)
	if !ok {
		return AskDurationPrompt, nil
	}
	music := IsElementaryMusic(query)

	var parts []string
	for i, c := range chunks {
		if i >= a.maxChunks {
			break
		}
		parts = append(parts, c.Text)
	}
	contextText := strings.Join(parts, "\n\n")

	header := HeaderDistrict
	content := contextText
	if contextText == "" || external {
		content = "Lesson plan content for: " + query
		header = HeaderAvailable
		if external {
			header = HeaderExternal
		}
	}

	body, err := formatLesson(content, minutes, music)
	if err != nil {
		return "", err
	}
	return header + "\n\n" + body, nil
}

func formatLesson(content string, minutes int, music bool) (string, error) {
	name := "general.md.tmpl"
	if music {
		name = "music.md.tmpl"
	}
	data := struct {
		Duration int
		Theme    string
		Subject  string
	}{
		Duration: minutes + extensionMinutes,
		Theme:    truncate(content, themeLength),
		Subject:  "General",
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
