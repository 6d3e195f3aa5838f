// Package controller holds the lesson request lifecycle: input validation,
// the single-flight submit latch, rendering of the reply and the follow-up
// actions (retry, new lesson, download, copy).
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mithrel/lessonplan/internal/markdown"
	"github.com/mithrel/lessonplan/pkg/api"
)

// ExternalSuffix is appended to the query when external knowledge is requested.
const ExternalSuffix = " (Please include external ideas and best practices beyond the documents)"

// MinQueryLength is the shortest query accepted for submission.
const MinQueryLength = 10

// CustomDuration is the duration choice that defers to Input.CustomDuration.
const CustomDuration = "custom"

var (
	ErrBusy           = errors.New("a lesson plan is already being generated")
	ErrNothingToRetry = errors.New("no previous request to retry")
	ErrNoContent      = errors.New("no content")
)

// ValidationError reports unusable user input. Message is shown verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// State is the visible phase of the session.
type State int

const (
	Idle State = iota
	Loading
	Result
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Result:
		return "result"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Input is what the user filled in.
type Input struct {
	Query             string
	Duration          string
	CustomDuration    string
	ExternalKnowledge bool
}

// Request builds the wire request for the input.
func (in Input) Request() api.AskRequest {
	q := strings.TrimSpace(in.Query)
	if in.ExternalKnowledge {
		q += ExternalSuffix
	}
	d := in.Duration
	if d == CustomDuration {
		d = strings.TrimSpace(in.CustomDuration)
	}
	return api.AskRequest{Query: q, Duration: d}
}

// InputFromRequest recovers the form input a request was built from.
func InputFromRequest(req api.AskRequest) Input {
	q, external := strings.CutSuffix(req.Query, ExternalSuffix)
	return Input{Query: q, Duration: req.Duration, ExternalKnowledge: external}
}

// Validate checks the built request the way the form does before sending.
func Validate(req api.AskRequest) error {
	if req.Query == "" {
		return &ValidationError{Message: "Please describe the lesson you need"}
	}
	if len([]rune(req.Query)) < MinQueryLength {
		return &ValidationError{Message: "Please provide a more detailed lesson description"}
	}
	return nil
}

// Asker sends a lesson request to the backend.
type Asker interface {
	Ask(ctx context.Context, req api.AskRequest) (api.AskResponse, error)
}

// Recorder persists successful replies.
type Recorder interface {
	Record(ctx context.Context, req api.AskRequest, resp api.AskResponse) error
}

// Rendered is a successful reply together with its markup.
type Rendered struct {
	Request  api.AskRequest
	Response api.AskResponse
	HTML     string
	Meta     string
}

// Session is the explicit controller state. It is safe for concurrent use;
// only one submission may be in flight at a time.
type Session struct {
	asker    Asker
	recorder Recorder
	logger   *log.Logger

	mu         sync.Mutex
	generating bool
	state      State
	last       *Input
	response   api.AskResponse
	html       string
	lastErr    error
}

// Option configures a Session.
type Option func(*Session)

func WithRecorder(r Recorder) Option { return func(s *Session) { s.recorder = r } }
func WithLogger(l *log.Logger) Option { return func(s *Session) { s.logger = l } }

func NewSession(asker Asker, opts ...Option) *Session {
	s := &Session{asker: asker, logger: log.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit validates, sends and renders one lesson request. A second call
// while one is outstanding returns ErrBusy without touching the backend.
func (s *Session) Submit(ctx context.Context, in Input) (Rendered, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return Rendered{}, ErrBusy
	}
	req := in.Request()
	if err := Validate(req); err != nil {
		s.mu.Unlock()
		return Rendered{}, err
	}
	s.generating = true
	s.state = Loading
	stored := in
	s.last = &stored
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	resp, err := s.asker.Ask(ctx, req)
	if err == nil && resp.Error != "" {
		err = errors.New(resp.Error)
	}
	if err != nil {
		s.logger.Printf("controller: generate failed: %v", err)
		s.mu.Lock()
		s.state = Failed
		s.lastErr = err
		s.mu.Unlock()
		return Rendered{}, err
	}

	out := Rendered{
		Request:  req,
		Response: resp,
		HTML:     markdown.Render(resp.Response),
		Meta:     Meta(resp),
	}

	s.mu.Lock()
	s.state = Result
	s.response = resp
	s.html = out.HTML
	s.lastErr = nil
	s.mu.Unlock()

	if s.recorder != nil {
		if rerr := s.recorder.Record(ctx, req, resp); rerr != nil {
			s.logger.Printf("controller: record lesson: %v", rerr)
		}
	}
	return out, nil
}

// Retry resubmits the last input.
func (s *Session) Retry(ctx context.Context) (Rendered, error) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last == nil {
		return Rendered{}, ErrNothingToRetry
	}
	return s.Submit(ctx, *last)
}

// Remember sets the input Retry resubmits, e.g. one restored from history.
func (s *Session) Remember(in Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &in
}

// Reset clears the last query and response and returns to Idle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
	s.response = api.AskResponse{}
	s.html = ""
	s.lastErr = nil
	if !s.generating {
		s.state = Idle
	}
}

// Generating reports whether a submission is in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last failed submission.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Response returns the raw text of the last successful reply.
func (s *Session) Response() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response.Response
}

// Load makes a stored response current, as if it had just been generated.
func (s *Session) Load(resp api.AskResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = resp
	s.html = markdown.Render(resp.Response)
	s.state = Result
}

// DownloadName is the file name used for a download at now.
func DownloadName(now time.Time) string {
	return "lesson-plan-" + now.UTC().Format("2006-01-02-15-04-05") + ".md"
}

// Download writes the raw response into dir and returns the file path.
func (s *Session) Download(dir string, now time.Time) (string, error) {
	text := s.Response()
	if text == "" {
		return "", ErrNoContent
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, DownloadName(now))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// Copy places the raw response on the clipboard.
func (s *Session) Copy(clip Clipboard) error {
	text := s.Response()
	if text == "" {
		return ErrNoContent
	}
	return clip.WriteAll(text)
}

// Meta builds the metadata line shown under a lesson. Absent fields are
// skipped.
func Meta(resp api.AskResponse) string {
	var parts []string
	if resp.ContextUsed > 0 {
		parts = append(parts, fmt.Sprintf("📚 Used %d document chunks", resp.ContextUsed))
	}
	if resp.QueryType != "" {
		parts = append(parts, "🎯 Lesson type: "+resp.QueryType)
	}
	if resp.ExternalKnowledge {
		parts = append(parts, "🌐 Included external knowledge")
	}
	if resp.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, resp.Timestamp); err == nil {
			parts = append(parts, "⏰ Generated: "+ts.Local().Format("1/2/2006, 3:04:05 PM"))
		} else {
			parts = append(parts, "⏰ Generated: "+resp.Timestamp)
		}
	}
	return strings.Join(parts, " • ")
}
