package api

import "time"

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query    string `json:"query"`
	Duration string `json:"duration"`
}

// AskResponse is the body returned by POST /ask. Only Response is required;
// a non-empty Error marks the reply as a failure even on a 2xx status.
type AskResponse struct {
	Response          string   `json:"response"`
	ContextUsed       int      `json:"context_used,omitempty"`
	Sources           []string `json:"sources,omitempty"`
	QueryType         string   `json:"query_type,omitempty"`
	ExternalKnowledge bool     `json:"external_knowledge,omitempty"`
	Timestamp         string   `json:"timestamp,omitempty"`
	Error             string   `json:"error,omitempty"`
	Message           string   `json:"message,omitempty"`
}

const (
	QueryTypeGeneral         = "general"
	QueryTypeElementaryMusic = "elementary_music"
)

// Health is the body of GET /health.
type Health struct {
	Status     string          `json:"status"`
	Timestamp  string          `json:"timestamp"`
	Components map[string]bool `json:"components,omitempty"`
	Chunks     int             `json:"chunks"`
	Error      string          `json:"error,omitempty"`
}

// Lesson is one generated lesson plan kept in history.
type Lesson struct {
	ID                string    `json:"id" yaml:"id"`
	Query             string    `json:"query" yaml:"query"`
	Duration          string    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Response          string    `json:"response" yaml:"response"`
	QueryType         string    `json:"query_type,omitempty" yaml:"query_type,omitempty"`
	ContextUsed       int       `json:"context_used" yaml:"context_used"`
	ExternalKnowledge bool      `json:"external_knowledge" yaml:"external_knowledge"`
	Sources           []string  `json:"sources,omitempty" yaml:"sources,omitempty"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
}

// LessonFromResponse builds a history record from a request/response pair.
func LessonFromResponse(req AskRequest, resp AskResponse, now time.Time) Lesson {
	created := now.UTC()
	if ts, err := time.Parse(time.RFC3339Nano, resp.Timestamp); err == nil {
		created = ts.UTC()
	}
	return Lesson{
		ID:                NewID(),
		Query:             req.Query,
		Duration:          req.Duration,
		Response:          resp.Response,
		QueryType:         resp.QueryType,
		ContextUsed:       resp.ContextUsed,
		ExternalKnowledge: resp.ExternalKnowledge,
		Sources:           append([]string(nil), resp.Sources...),
		CreatedAt:         created,
	}
}

// Chunk is a window of words from an ingested curriculum document.
type Chunk struct {
	ID        int64  `json:"id"`
	Source    string `json:"source"`
	Seq       int    `json:"chunk_id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
	StartWord int    `json:"start_word"`
	EndWord   int    `json:"end_word"`
}

// ListQuery filters lessons for listing.
type ListQuery struct {
	Since time.Time
	Until time.Time
	Limit int
}

// AskResponse rebuilds the reply a lesson was recorded from.
func (l Lesson) AskResponse() AskResponse {
	resp := AskResponse{
		Response:          l.Response,
		ContextUsed:       l.ContextUsed,
		Sources:           append([]string(nil), l.Sources...),
		QueryType:         l.QueryType,
		ExternalKnowledge: l.ExternalKnowledge,
	}
	if !l.CreatedAt.IsZero() {
		resp.Timestamp = l.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}
