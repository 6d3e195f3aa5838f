package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mithrel/lessonplan/pkg/api"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrAmbiguous = errors.New("ambiguous id prefix")
)

// LessonRepo stores generated lesson plans.
type LessonRepo interface {
	// Create stores l. When a lesson with the same content hash exists it
	// returns that lesson together with ErrConflict.
	Create(ctx context.Context, l api.Lesson) (api.Lesson, error)
	// Get resolves an exact id or a unique id prefix.
	Get(ctx context.Context, id string) (api.Lesson, error)
	// List returns lessons newest first.
	List(ctx context.Context, q api.ListQuery) ([]api.Lesson, error)
	Last(ctx context.Context) (api.Lesson, error)
	Delete(ctx context.Context, id string) error
}

// ChunkRepo stores ingested document chunks for retrieval.
type ChunkRepo interface {
	ReplaceSource(ctx context.Context, source string, chunks []api.Chunk) error
	Search(ctx context.Context, query string, limit int) ([]api.Chunk, error)
	Count(ctx context.Context) (int, error)
	Sources(ctx context.Context) ([]string, error)
}

// Store groups the repositories behind one connection.
type Store struct {
	Lessons LessonRepo
	Chunks  ChunkRepo
	closer  io.Closer
}

// Open returns a Store for dsn: sqlite://<path> or memory://.
func Open(ctx context.Context, dsn string) (*Store, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		st, closer, err := openSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		st.closer = closer
		return st, nil
	case strings.HasPrefix(dsn, "memory://"):
		m := newMemStore()
		return &Store{Lessons: m, Chunks: m}, nil
	default:
		return nil, fmt.Errorf("unsupported dsn %q", dsn)
	}
}

func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Recorder adapts the lesson repository to record request/response pairs.
// Identical plans (same content hash) are stored once.
type Recorder struct {
	Lessons LessonRepo
}

func (r Recorder) Record(ctx context.Context, req api.AskRequest, resp api.AskResponse) error {
	_, err := r.RecordLesson(ctx, req, resp)
	return err
}

// RecordLesson stores the pair and returns the stored lesson. A duplicate
// returns the existing record.
func (r Recorder) RecordLesson(ctx context.Context, req api.AskRequest, resp api.AskResponse) (api.Lesson, error) {
	l := api.LessonFromResponse(req, resp, nowUTC())
	created, err := r.Lessons.Create(ctx, l)
	if errors.Is(err, ErrConflict) {
		return created, nil
	}
	return created, err
}

var nowUTC = func() time.Time { return time.Now().UTC() }
