package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mithrel/lessonplan/pkg/api"
)

// memStore keeps everything in process memory. Search scores chunks by the
// number of query term occurrences.
type memStore struct {
	mu      sync.RWMutex
	lessons map[string]api.Lesson
	chunks  []api.Chunk
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{lessons: make(map[string]api.Lesson)}
}

func (m *memStore) Create(ctx context.Context, l api.Lesson) (api.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = api.NewID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = nowUTC()
	}
	h := l.Hash()
	for _, cur := range m.lessons {
		if cur.Hash() == h {
			return cur, ErrConflict
		}
	}
	if _, ok := m.lessons[l.ID]; ok {
		return api.Lesson{}, ErrConflict
	}
	m.lessons[l.ID] = l
	return l, nil
}

func (m *memStore) Get(ctx context.Context, id string) (api.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id = strings.TrimSpace(id)
	if id == "" {
		return api.Lesson{}, ErrNotFound
	}
	if l, ok := m.lessons[id]; ok {
		return l, nil
	}
	var found []api.Lesson
	for k, l := range m.lessons {
		if strings.HasPrefix(k, id) {
			found = append(found, l)
		}
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

func (m *memStore) List(ctx context.Context, q api.ListQuery) ([]api.Lesson, error) {
	m.mu.RLock()
	out := make([]api.Lesson, 0, len(m.lessons))
	for _, l := range m.lessons {
		if !q.Since.IsZero() && l.CreatedAt.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && l.CreatedAt.After(q.Until) {
			continue
		}
		out = append(out, l)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) Last(ctx context.Context) (api.Lesson, error) {
	ls, _ := m.List(ctx, api.ListQuery{Limit: 1})
	if len(ls) == 0 {
		return api.Lesson{}, ErrNotFound
	}
	return ls[0], nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	l, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lessons, l.ID)
	return nil
}

func (m *memStore) ReplaceSource(ctx context.Context, source string, chunks []api.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.Source != source {
			kept = append(kept, c)
		}
	}
	m.chunks = kept
	for _, c := range chunks {
		m.nextID++
		c.ID = m.nextID
		c.Source = source
		m.chunks = append(m.chunks, c)
	}
	return nil
}

func (m *memStore) Search(ctx context.Context, query string, limit int) ([]api.Chunk, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}
	type scored struct {
		c     api.Chunk
		score int
	}
	m.mu.RLock()
	var hits []scored
	for _, c := range m.chunks {
		text := strings.ToLower(c.Text)
		n := 0
		for _, t := range terms {
			n += strings.Count(text, t)
		}
		if n > 0 {
			hits = append(hits, scored{c: c, score: n})
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]api.Chunk, len(hits))
	for i, h := range hits {
		out[i] = h.c
	}
	return out, nil
}

func (m *memStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

func (m *memStore) Sources(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []string
	for _, c := range m.chunks {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		out = append(out, c.Source)
	}
	sort.Strings(out)
	return out, nil
}
