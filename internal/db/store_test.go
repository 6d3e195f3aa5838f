package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/lessonplan/pkg/api"
)

func setupTestDB(t *testing.T) (*Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, ctx
}

// eachStore runs fn against the sqlite and memory backends.
func eachStore(t *testing.T, fn func(t *testing.T, s *Store, ctx context.Context)) {
	t.Run("sqlite", func(t *testing.T) {
		s, ctx := setupTestDB(t)
		fn(t, s, ctx)
	})
	t.Run("memory", func(t *testing.T) {
		s, err := Open(context.Background(), "memory://")
		require.NoError(t, err)
		fn(t, s, context.Background())
	})
}

func lesson(id, query string, at time.Time) api.Lesson {
	return api.Lesson{
		ID:          id,
		Query:       query,
		Duration:    "30 minutes",
		Response:    "# Plan for " + query,
		QueryType:   api.QueryTypeGeneral,
		ContextUsed: 2,
		Sources:     []string{"a.txt", "b.txt"},
		CreatedAt:   at,
	}
}

func TestOpen_UnsupportedDSN(t *testing.T) {
	_, err := Open(context.Background(), "postgres://x")
	require.Error(t, err)
}

func TestLessons_CRUD(t *testing.T) {
	eachStore(t, func(t *testing.T, s *Store, ctx context.Context) {
		base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
		a := lesson("aaa111", "fractions", base)
		b := lesson("bbb222", "rhythm", base.Add(time.Hour))
		b.ExternalKnowledge = true

		_, err := s.Lessons.Create(ctx, a)
		require.NoError(t, err)
		_, err = s.Lessons.Create(ctx, b)
		require.NoError(t, err)

		got, err := s.Lessons.Get(ctx, "bbb222")
		require.NoError(t, err)
		assert.Equal(t, "rhythm", got.Query)
		assert.True(t, got.ExternalKnowledge)
		assert.Equal(t, []string{"a.txt", "b.txt"}, got.Sources)
		assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

		got, err = s.Lessons.Get(ctx, "aaa")
		require.NoError(t, err)
		assert.Equal(t, "aaa111", got.ID)

		last, err := s.Lessons.Last(ctx)
		require.NoError(t, err)
		assert.Equal(t, "bbb222", last.ID)

		all, err := s.Lessons.List(ctx, api.ListQuery{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "bbb222", all[0].ID)

		recent, err := s.Lessons.List(ctx, api.ListQuery{Since: base.Add(30 * time.Minute)})
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "bbb222", recent[0].ID)

		limited, err := s.Lessons.List(ctx, api.ListQuery{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		require.NoError(t, s.Lessons.Delete(ctx, "aaa"))
		_, err = s.Lessons.Get(ctx, "aaa111")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Lessons.Delete(ctx, "zzz"), ErrNotFound)
	})
}

func TestLessons_DuplicateContent(t *testing.T) {
	eachStore(t, func(t *testing.T, s *Store, ctx context.Context) {
		now := time.Now().UTC().Truncate(time.Second)
		first, err := s.Lessons.Create(ctx, lesson("one", "fractions", now))
		require.NoError(t, err)

		dup := lesson("two", "fractions", now.Add(time.Minute))
		existing, err := s.Lessons.Create(ctx, dup)
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, first.ID, existing.ID)

		all, err := s.Lessons.List(ctx, api.ListQuery{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestInsertLesson_UniqueHashReturnsStored(t *testing.T) {
	s, ctx := setupTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	first, err := s.Lessons.Create(ctx, lesson("race1", "fractions", now))
	require.NoError(t, err)

	// Another writer's row is already committed when this insert runs.
	late := lesson("race2", "fractions", now.Add(time.Second))
	sq := s.Lessons.(*sqliteStore)
	got, err := insertLesson(ctx, sq.db, late, late.Hash(), `["a.txt","b.txt"]`)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "fractions", got.Query)

	clash := lesson("race1", "other content", now)
	_, err = insertLesson(ctx, sq.db, clash, clash.Hash(), `[]`)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestLessons_AmbiguousPrefix(t *testing.T) {
	eachStore(t, func(t *testing.T, s *Store, ctx context.Context) {
		now := time.Now().UTC()
		_, err := s.Lessons.Create(ctx, lesson("abc1", "one", now))
		require.NoError(t, err)
		_, err = s.Lessons.Create(ctx, lesson("abc2", "two", now))
		require.NoError(t, err)

		_, err = s.Lessons.Get(ctx, "abc")
		assert.ErrorIs(t, err, ErrAmbiguous)
		_, err = s.Lessons.Get(ctx, "")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Lessons.Last(ctx)
		assert.NoError(t, err)
	})
}

func TestLessons_LastEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, s *Store, ctx context.Context) {
		_, err := s.Lessons.Last(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestChunks_ReplaceAndSearch(t *testing.T) {
	eachStore(t, func(t *testing.T, s *Store, ctx context.Context) {
		music := []api.Chunk{
			{Seq: 0, Text: "Students clap the rhythm and keep a steady beat", WordCount: 9},
			{Seq: 1, Text: "Singing games for kindergarten music class", WordCount: 6},
		}
		science := []api.Chunk{
			{Seq: 0, Text: "Plants use photosynthesis to convert light into energy", WordCount: 8},
		}
		require.NoError(t, s.Chunks.ReplaceSource(ctx, "music.txt", music))
		require.NoError(t, s.Chunks.ReplaceSource(ctx, "science.txt", science))

		n, err := s.Chunks.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		srcs, err := s.Chunks.Sources(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"music.txt", "science.txt"}, srcs)

		hits, err := s.Chunks.Search(ctx, "Photosynthesis lesson, grade 5", 3)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "science.txt", hits[0].Source)
		assert.NotZero(t, hits[0].ID)

		hits, err = s.Chunks.Search(ctx, "rhythm beat", 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, 0, hits[0].Seq)

		// special characters never reach the match syntax
		hits, err = s.Chunks.Search(ctx, `music" OR * NEAR(`, 5)
		require.NoError(t, err)
		assert.Len(t, hits, 1)

		hits, err = s.Chunks.Search(ctx, "a b", 5)
		require.NoError(t, err)
		assert.Empty(t, hits)

		require.NoError(t, s.Chunks.ReplaceSource(ctx, "music.txt", music[:1]))
		n, err = s.Chunks.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		hits, err = s.Chunks.Search(ctx, "kindergarten", 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestRecorder(t *testing.T) {
	eachStore(t, func(t *testing.T, s *Store, ctx context.Context) {
		rec := Recorder{Lessons: s.Lessons}
		req := api.AskRequest{Query: "volcano lesson", Duration: "20 minutes"}
		resp := api.AskResponse{Response: "# Volcanoes", QueryType: api.QueryTypeGeneral}

		first, err := rec.RecordLesson(ctx, req, resp)
		require.NoError(t, err)
		require.NoError(t, rec.Record(ctx, req, resp))

		all, err := s.Lessons.List(ctx, api.ListQuery{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, first.ID, all[0].ID)
	})
}

func TestWithTx_Rollback(t *testing.T) {
	s, ctx := setupTestDB(t)
	p, ok := s.Lessons.(TxProvider)
	require.True(t, ok)

	tx, err := p.BeginTx(ctx)
	require.NoError(t, err)
	txCtx := WithTx(ctx, tx)
	assert.Same(t, tx, TxFromContext(txCtx))

	_, err = s.Lessons.Create(txCtx, lesson("tx1", "inside tx", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, s.Chunks.ReplaceSource(txCtx, "t.txt", []api.Chunk{{Text: "transaction scoped chunk"}}))
	require.NoError(t, tx.Rollback())

	_, err = s.Lessons.Get(ctx, "tx1")
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := s.Chunks.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunInTx(t *testing.T) {
	s, ctx := setupTestDB(t)
	p := s.Lessons.(TxProvider)
	boom := errors.New("boom")

	err := RunInTx(ctx, p, func(ctx context.Context) error {
		_, err := s.Lessons.Create(ctx, lesson("rb1", "rolled back", time.Now().UTC()))
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = s.Lessons.Get(ctx, "rb1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, RunInTx(ctx, p, func(ctx context.Context) error {
		_, err := s.Lessons.Create(ctx, lesson("ok1", "committed", time.Now().UTC()))
		return err
	}))
	_, err = s.Lessons.Get(ctx, "ok1")
	assert.NoError(t, err)
}

func TestQueryTerms(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a bc de", nil},
		{"Rhythm, rhythm & BEAT", []string{"rhythm", "beat"}},
		{"grade 5 Duration: 30 minutes", []string{"grade", "duration", "minutes"}},
		{"über-cool naïve", []string{"über", "cool", "naïve"}},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.want, queryTerms(tc.in), "case %d", i)
	}
	assert.Equal(t, `"rhythm" OR "beat"`, ftsMatch("rhythm beat"))
	assert.Equal(t, "", ftsMatch("!!"))
}
