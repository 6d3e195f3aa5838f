package controller

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/lessonplan/pkg/api"
)

type fakeAsker struct {
	mu    sync.Mutex
	calls []api.AskRequest
	resp  api.AskResponse
	err   error
	block chan struct{}
}

func (f *fakeAsker) Ask(ctx context.Context, req api.AskRequest) (api.AskResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return api.AskResponse{}, ctx.Err()
		}
	}
	return f.resp, f.err
}

func (f *fakeAsker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRecorder struct {
	got []api.AskResponse
	err error
}

func (r *fakeRecorder) Record(_ context.Context, _ api.AskRequest, resp api.AskResponse) error {
	r.got = append(r.got, resp)
	return r.err
}

type fakeClip struct{ text string }

func (c *fakeClip) WriteAll(text string) error { c.text = text; return nil }

func quietSession(a Asker, opts ...Option) *Session {
	return NewSession(a, append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)...)
}

func TestInput_Request(t *testing.T) {
	req := Input{Query: "  fractions for grade 4  ", Duration: "45 minutes"}.Request()
	assert.Equal(t, "fractions for grade 4", req.Query)
	assert.Equal(t, "45 minutes", req.Duration)

	req = Input{Query: "fractions", Duration: CustomDuration, CustomDuration: " 75 minutes "}.Request()
	assert.Equal(t, "75 minutes", req.Duration)

	req = Input{Query: "fractions", ExternalKnowledge: true}.Request()
	assert.Equal(t, "fractions"+ExternalSuffix, req.Query)
}

func TestValidate(t *testing.T) {
	var ve *ValidationError

	err := Validate(Input{Query: "   "}.Request())
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please describe the lesson you need", ve.Message)

	err = Validate(Input{Query: "rhythm"}.Request())
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please provide a more detailed lesson description", ve.Message)

	assert.NoError(t, Validate(Input{Query: "rhythm gr2"}.Request()))
	// the suffix counts toward the length
	assert.NoError(t, Validate(Input{Query: "rhythm", ExternalKnowledge: true}.Request()))
}

func TestSubmit_Success(t *testing.T) {
	a := &fakeAsker{resp: api.AskResponse{Response: "# Plan\n- a\n- b", ContextUsed: 2, QueryType: "general"}}
	rec := &fakeRecorder{}
	s := quietSession(a, WithRecorder(rec))

	out, err := s.Submit(context.Background(), Input{Query: "photosynthesis lesson", Duration: "30 minutes"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Plan</h1>\n<ul><li>a</li><li>b</li></ul>", out.HTML)
	assert.Equal(t, "📚 Used 2 document chunks • 🎯 Lesson type: general", out.Meta)
	assert.Equal(t, Result, s.State())
	assert.False(t, s.Generating())
	assert.Equal(t, "# Plan\n- a\n- b", s.Response())
	require.Len(t, rec.got, 1)
}

func TestSubmit_ValidationDoesNotCallBackend(t *testing.T) {
	a := &fakeAsker{}
	s := quietSession(a)
	_, err := s.Submit(context.Background(), Input{Query: "short"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, a.count())
	assert.Equal(t, Idle, s.State())
	assert.False(t, s.Generating())
}

func TestSubmit_RejectsConcurrent(t *testing.T) {
	a := &fakeAsker{block: make(chan struct{}), resp: api.AskResponse{Response: "ok"}}
	s := quietSession(a)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), Input{Query: "a long enough query"})
		done <- err
	}()
	require.Eventually(t, s.Generating, time.Second, 5*time.Millisecond)
	assert.Equal(t, Loading, s.State())

	_, err := s.Submit(context.Background(), Input{Query: "another long query"})
	assert.ErrorIs(t, err, ErrBusy)

	close(a.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, a.count())
	assert.False(t, s.Generating())
}

func TestSubmit_FailureReleasesLatch(t *testing.T) {
	boom := errors.New("HTTP 500: Internal Server Error")
	a := &fakeAsker{err: boom}
	s := quietSession(a)

	_, err := s.Submit(context.Background(), Input{Query: "a long enough query"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Failed, s.State())
	assert.False(t, s.Generating())
	assert.ErrorIs(t, s.Err(), boom)

	a.err = nil
	a.resp = api.AskResponse{Response: "ok"}
	_, err = s.Submit(context.Background(), Input{Query: "a long enough query"})
	require.NoError(t, err)
	assert.Nil(t, s.Err())
}

func TestSubmit_ErrorFieldIsFailure(t *testing.T) {
	a := &fakeAsker{resp: api.AskResponse{Error: "model offline"}}
	s := quietSession(a)
	_, err := s.Submit(context.Background(), Input{Query: "a long enough query"})
	require.EqualError(t, err, "model offline")
	assert.Equal(t, Failed, s.State())
}

func TestSubmit_RecorderErrorIsNotFatal(t *testing.T) {
	a := &fakeAsker{resp: api.AskResponse{Response: "ok"}}
	s := quietSession(a, WithRecorder(&fakeRecorder{err: errors.New("disk full")}))
	_, err := s.Submit(context.Background(), Input{Query: "a long enough query"})
	require.NoError(t, err)
}

func TestRetry(t *testing.T) {
	a := &fakeAsker{err: errors.New("down")}
	s := quietSession(a)

	_, err := s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry)

	in := Input{Query: "music for grade 2", Duration: "30 minutes", ExternalKnowledge: true}
	_, err = s.Submit(context.Background(), in)
	require.Error(t, err)

	a.err = nil
	a.resp = api.AskResponse{Response: "ok"}
	_, err = s.Retry(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, a.count())
	assert.Equal(t, a.calls[0], a.calls[1])
	assert.True(t, strings.HasSuffix(a.calls[1].Query, ExternalSuffix))
}

func TestRemember_RestoresFromRequest(t *testing.T) {
	a := &fakeAsker{resp: api.AskResponse{Response: "ok"}}
	s := quietSession(a)

	orig := Input{Query: "steady beat for grade 2", Duration: "30 minutes", ExternalKnowledge: true}
	restored := InputFromRequest(orig.Request())
	assert.Equal(t, orig, restored)

	s.Remember(restored)
	_, err := s.Retry(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, a.count())
	assert.Equal(t, orig.Request(), a.calls[0])
}

func TestReset(t *testing.T) {
	a := &fakeAsker{resp: api.AskResponse{Response: "ok"}}
	s := quietSession(a)
	_, err := s.Submit(context.Background(), Input{Query: "a long enough query"})
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, s.Response())
	_, err = s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry)
}

func TestDownload(t *testing.T) {
	s := quietSession(&fakeAsker{})
	dir := t.TempDir()
	now := time.Date(2025, 1, 9, 14, 3, 7, 0, time.UTC)

	_, err := s.Download(dir, now)
	assert.ErrorIs(t, err, ErrNoContent)

	s.Load(api.AskResponse{Response: "# Plan\n**raw**"})
	path, err := s.Download(filepath.Join(dir, "out"), now)
	require.NoError(t, err)
	assert.Equal(t, "lesson-plan-2025-01-09-14-03-07.md", filepath.Base(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Plan\n**raw**", string(b))
}

func TestDownloadName_UsesUTC(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	assert.Equal(t, "lesson-plan-2025-06-30-22-00-00.md", DownloadName(time.Date(2025, 7, 1, 0, 0, 0, 0, loc)))
}

func TestCopy(t *testing.T) {
	s := quietSession(&fakeAsker{})
	clip := &fakeClip{}
	assert.ErrorIs(t, s.Copy(clip), ErrNoContent)

	s.Load(api.AskResponse{Response: "text"})
	require.NoError(t, s.Copy(clip))
	assert.Equal(t, "text", clip.text)
}

func TestMeta(t *testing.T) {
	assert.Equal(t, "", Meta(api.AskResponse{}))
	m := Meta(api.AskResponse{
		ContextUsed:       3,
		QueryType:         api.QueryTypeElementaryMusic,
		ExternalKnowledge: true,
		Timestamp:         "2025-01-09T14:03:07Z",
	})
	parts := strings.Split(m, " • ")
	require.Len(t, parts, 4)
	assert.Equal(t, "📚 Used 3 document chunks", parts[0])
	assert.Equal(t, "🎯 Lesson type: elementary_music", parts[1])
	assert.Equal(t, "🌐 Included external knowledge", parts[2])
	assert.True(t, strings.HasPrefix(parts[3], "⏰ Generated: "))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "result", Result.String())
	assert.Equal(t, "error", Failed.String())
}
