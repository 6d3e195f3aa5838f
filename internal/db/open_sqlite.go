package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "modernc.org/sqlite"

	"github.com/mithrel/lessonplan/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// conn returns the transaction carried by ctx, or the database handle.
func (s *sqliteStore) conn(ctx context.Context) execer {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *sqliteStore) inTx(ctx context.Context, fn func(execer) error) error {
	return RunInTx(ctx, s, func(ctx context.Context) error {
		return fn(TxFromContext(ctx))
	})
}

const lessonColumns = `id, query, duration, response, query_type, context_used, external, sources, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(r rowScanner) (api.Lesson, error) {
	var l api.Lesson
	var sourcesJSON string
	if err := r.Scan(&l.ID, &l.Query, &l.Duration, &l.Response, &l.QueryType, &l.ContextUsed, &l.ExternalKnowledge, &sourcesJSON, &l.CreatedAt); err != nil {
		return api.Lesson{}, err
	}
	_ = json.Unmarshal([]byte(sourcesJSON), &l.Sources)
	return l, nil
}

// Lessons

func (s *sqliteStore) Create(ctx context.Context, l api.Lesson) (api.Lesson, error) {
	if l.ID == "" {
		l.ID = api.NewID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = nowUTC()
	}
	hash := l.Hash()
	sourcesJSON, _ := json.Marshal(l.Sources)

	var existing api.Lesson
	err := s.inTx(ctx, func(x execer) error {
		row := x.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE hash=?`, hash)
		cur, err := scanLesson(row)
		if err == nil {
			existing = cur
			return ErrConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		existing, err = insertLesson(ctx, x, l, hash, string(sourcesJSON))
		return err
	})
	if errors.Is(err, ErrConflict) {
		return existing, ErrConflict
	}
	if err != nil {
		return api.Lesson{}, err
	}
	return l, nil
}

// insertLesson writes l. A UNIQUE violation on hash means another writer
// stored the same content first; that row is returned with ErrConflict.
func insertLesson(ctx context.Context, x execer, l api.Lesson, hash, sourcesJSON string) (api.Lesson, error) {
	_, err := x.ExecContext(ctx, `INSERT INTO lessons(id, hash, query, duration, response, query_type, context_used, external, sources, created_at) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		l.ID, hash, l.Query, l.Duration, l.Response, l.QueryType, l.ContextUsed, l.ExternalKnowledge, sourcesJSON, l.CreatedAt.UTC())
	if err == nil || !strings.Contains(err.Error(), "UNIQUE") {
		return api.Lesson{}, err
	}
	cur, serr := scanLesson(x.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE hash=?`, hash))
	if serr != nil {
		return api.Lesson{}, fmt.Errorf("insert lesson %s: %w", l.ID, err)
	}
	return cur, ErrConflict
}

func (s *sqliteStore) Get(ctx context.Context, id string) (api.Lesson, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return api.Lesson{}, ErrNotFound
	}
	x := s.conn(ctx)
	l, err := scanLesson(x.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id=?`, id))
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return api.Lesson{}, err
	}

	rows, err := x.QueryContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return api.Lesson{}, err
	}
	defer rows.Close()
	var found []api.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return api.Lesson{}, err
		}
		found = append(found, l)
	}
	if err := rows.Err(); err != nil {
		return api.Lesson{}, err
	}
	switch len(found) {
	case 0:
		return api.Lesson{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return api.Lesson{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

func (s *sqliteStore) List(ctx context.Context, q api.ListQuery) ([]api.Lesson, error) {
	sqlq := `SELECT ` + lessonColumns + ` FROM lessons`
	var conds []string
	var args []any
	if !q.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, q.Since.UTC())
	}
	if !q.Until.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, q.Until.UTC())
	}
	if len(conds) > 0 {
		sqlq += " WHERE " + strings.Join(conds, " AND ")
	}
	sqlq += " ORDER BY created_at DESC, id DESC"
	if q.Limit > 0 {
		sqlq += " LIMIT ?"
		args = append(args, q.Limit)
	}
	rows, err := s.conn(ctx).QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Last(ctx context.Context) (api.Lesson, error) {
	ls, err := s.List(ctx, api.ListQuery{Limit: 1})
	if err != nil {
		return api.Lesson{}, err
	}
	if len(ls) == 0 {
		return api.Lesson{}, ErrNotFound
	}
	return ls[0], nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM lessons WHERE id=?`, l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Chunks

func (s *sqliteStore) ReplaceSource(ctx context.Context, source string, chunks []api.Chunk) error {
	return s.inTx(ctx, func(x execer) error {
		if _, err := x.ExecContext(ctx, `DELETE FROM chunks_fts WHERE rowid IN (SELECT id FROM chunks WHERE source=?)`, source); err != nil {
			return err
		}
		if _, err := x.ExecContext(ctx, `DELETE FROM chunks WHERE source=?`, source); err != nil {
			return err
		}
		for _, c := range chunks {
			res, err := x.ExecContext(ctx, `INSERT INTO chunks(source, seq, text, word_count, start_word, end_word) VALUES(?,?,?,?,?,?)`,
				source, c.Seq, c.Text, c.WordCount, c.StartWord, c.EndWord)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			if _, err := x.ExecContext(ctx, `INSERT INTO chunks_fts(rowid, text, source) VALUES(?,?,?)`, id, c.Text, source); err != nil {
				return err
			}
		}
		return nil
	})
}

// Search ranks chunks by bm25 over any of the query terms.
func (s *sqliteStore) Search(ctx context.Context, query string, limit int) ([]api.Chunk, error) {
	match := ftsMatch(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT c.id, c.source, c.seq, c.text, c.word_count, c.start_word, c.end_word
FROM chunks_fts f
JOIN chunks c ON c.id = f.rowid
WHERE chunks_fts MATCH ?
ORDER BY bm25(chunks_fts), c.id
LIMIT ?`, match, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.Chunk
	for rows.Next() {
		var c api.Chunk
		if err := rows.Scan(&c.ID, &c.Source, &c.Seq, &c.Text, &c.WordCount, &c.StartWord, &c.EndWord); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (s *sqliteStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT DISTINCT source FROM chunks ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// queryTerms lowercases s and returns its distinct letter/digit runs of at
// least three runes, in order of appearance.
func queryTerms(s string) []string {
	s = strings.ToLower(s)
	seen := map[string]struct{}{}
	var out []string
	run := make([]rune, 0, 32)

	flush := func() {
		if len(run) >= 3 {
			w := string(run)
			if _, ok := seen[w]; !ok {
				seen[w] = struct{}{}
				out = append(out, w)
			}
		}
		run = run[:0]
	}

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			run = append(run, r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// ftsMatch builds an FTS5 expression that matches any term. Terms are
// quoted so user input never reaches the FTS query syntax.
func ftsMatch(query string) string {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// openSQLite connects to a SQLite database using modernc.org/sqlite driver and ensures schema exists.
func openSQLite(ctx context.Context, dsn string) (*Store, io.Closer, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, err
	}
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA busy_timeout=5000;`); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	s := &sqliteStore{db: dbh}
	return &Store{Lessons: s, Chunks: s}, dbh, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS lessons (
  id TEXT PRIMARY KEY,
  hash TEXT NOT NULL UNIQUE,
  query TEXT NOT NULL,
  duration TEXT NOT NULL DEFAULT '',
  response TEXT NOT NULL,
  query_type TEXT NOT NULL DEFAULT '',
  context_used INTEGER NOT NULL DEFAULT 0,
  external INTEGER NOT NULL DEFAULT 0,
  sources TEXT NOT NULL DEFAULT '[]',
  created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lessons_created ON lessons(created_at DESC, id);
CREATE TABLE IF NOT EXISTS chunks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  seq INTEGER NOT NULL,
  text TEXT NOT NULL,
  word_count INTEGER NOT NULL,
  start_word INTEGER NOT NULL,
  end_word INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source, seq);
CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
  text,
  source UNINDEXED,
  tokenize='unicode61'
);
`)
	return err
}
