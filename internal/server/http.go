package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/lessonplan/internal/assistant"
	"github.com/mithrel/lessonplan/internal/db"
	"github.com/mithrel/lessonplan/internal/markdown"
	"github.com/mithrel/lessonplan/pkg/api"
)

const defaultMaxBody = 16 << 20

// Server serves the lesson backend over HTTP.
type Server struct {
	cfg    *viper.Viper
	store  *db.Store
	asst   *assistant.Assistant
	logger *log.Logger
}

func New(cfg *viper.Viper, store *db.Store, asst *assistant.Assistant, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, store: store, asst: asst, logger: logger}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/health", s.logRequest(s.handleHealth))
	mux.HandleFunc("/ask", s.logRequest(s.auth(s.handleAsk)))
	mux.HandleFunc("/render", s.logRequest(s.handleRender))
	mux.HandleFunc("/lessons/", s.logRequest(s.handleLesson))
	mux.HandleFunc("/", s.logRequest(s.handleIndex))
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	s.logger.Printf("http: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.logger.Printf("http: %s %s %s (%s)", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start).Round(time.Millisecond))
	}
}

// auth enforces a bearer token when auth.token is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimSpace(s.cfg.GetString("auth.token"))
		if tok == "" {
			next(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		if !strings.HasPrefix(got, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(got, "Bearer ")) != tok {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) maxBody() int64 {
	if n := s.cfg.GetInt64("server.max_body_bytes"); n > 0 {
		return n
	}
	return defaultMaxBody
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		writeErr(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var req struct {
		Query    *string `json:"query"`
		Duration string  `json:"duration"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Query == nil {
		writeErr(w, http.StatusBadRequest, "Missing query parameter")
		return
	}
	query := strings.TrimSpace(*req.Query)
	duration := strings.TrimSpace(req.Duration)
	if query == "" {
		writeErr(w, http.StatusBadRequest, "Query cannot be empty")
		return
	}

	resp := s.asst.Process(r.Context(), query, duration)
	if resp.Error == "" {
		rec := db.Recorder{Lessons: s.store.Lessons}
		if err := rec.Record(r.Context(), api.AskRequest{Query: query, Duration: duration}, resp); err != nil {
			s.logger.Printf("http: record lesson: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Format(time.RFC3339Nano)
	n, err := s.store.Chunks.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, api.Health{Status: "unhealthy", Error: err.Error(), Timestamp: now})
		return
	}
	srcs, err := s.store.Chunks.Sources(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, api.Health{Status: "unhealthy", Error: err.Error(), Timestamp: now})
		return
	}
	writeJSON(w, http.StatusOK, api.Health{
		Status:    "healthy",
		Timestamp: now,
		Chunks:    n,
		Components: map[string]bool{
			"store":     true,
			"documents": len(srcs) > 0,
			"chunks":    n > 0,
		},
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody()))
	if err != nil {
		writeErr(w, http.StatusRequestEntityTooLarge, "Request too large")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, markdown.Render(string(body)))
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{- if .Meta}}<p class="response-meta">{{.Meta}}</p>{{end}}
<article class="response-content">
{{.Body}}
</article>
</body></html>
`))

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Lesson plans</title></head>
<body>
<h1>Lesson plans</h1>
<ul>
{{- range .}}
<li><a href="/lessons/{{.ID}}">{{.Title}}</a> <small>{{.When}}</small></li>
{{- else}}
<li>No lesson plans yet.</li>
{{- end}}
</ul>
</body></html>
`))

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/lessons/"), "/")
	l, err := s.store.Lessons.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrAmbiguous) {
		writeErr(w, http.StatusNotFound, "Lesson not found")
		return
	}
	if err != nil {
		s.logger.Printf("http: get lesson %s: %v", id, err)
		writeErr(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	doc := markdown.Parse(l.Response)
	title := doc.Title()
	if title == "" {
		title = l.Query
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTmpl.Execute(w, struct {
		Title string
		Meta  string
		Body  template.HTML
	}{
		Title: title,
		Meta:  l.Query,
		Body:  template.HTML(doc.HTML()),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeErr(w, http.StatusNotFound, "Endpoint not found")
		return
	}
	ls, err := s.store.Lessons.List(r.Context(), api.ListQuery{Limit: 50})
	if err != nil {
		s.logger.Printf("http: list lessons: %v", err)
		writeErr(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	type row struct{ ID, Title, When string }
	rows := make([]row, 0, len(ls))
	for _, l := range ls {
		rows = append(rows, row{ID: l.ID, Title: l.Query, When: l.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTmpl.Execute(w, rows)
}
