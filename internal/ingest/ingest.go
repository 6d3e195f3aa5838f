// Package ingest cleans curriculum documents and splits them into
// overlapping word windows for retrieval.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mithrel/lessonplan/pkg/api"
)

const (
	DefaultChunkSize    = 300
	DefaultChunkOverlap = 50
	// minChunkChars drops windows that are too short to be useful.
	minChunkChars = 50
	minLineChars  = 10
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	disallowRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()-]`)
)

var ErrBadWindow = errors.New("chunk overlap must be smaller than chunk size")

// Clean collapses whitespace and strips characters outside word characters
// and basic punctuation. Text is NFC-normalized first so decomposed accents
// survive as letters. Text of ten characters or fewer is treated as an
// extraction artifact and dropped.
func Clean(text string) string {
	text = norm.NFC.String(text)
	text = spaceRe.ReplaceAllString(text, " ")
	text = disallowRe.ReplaceAllString(text, "")
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > minLineChars {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ChunkWords splits text into windows of size words, each starting
// size-overlap words after the previous one. Windows of 50 characters or
// fewer are skipped; Seq counts only kept chunks.
func ChunkWords(text, source string, size, overlap int) []api.Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}
	words := strings.Fields(text)
	var chunks []api.Chunk
	for i := 0; i < len(words); i += step {
		end := min(i+size, len(words))
		joined := strings.Join(words[i:end], " ")
		if len(strings.TrimSpace(joined)) <= minChunkChars {
			continue
		}
		chunks = append(chunks, api.Chunk{
			Source:    source,
			Seq:       len(chunks),
			Text:      joined,
			WordCount: end - i,
			StartWord: i,
			EndWord:   end,
		})
	}
	return chunks
}

// ChunkStore receives the chunks of one source document.
type ChunkStore interface {
	ReplaceSource(ctx context.Context, source string, chunks []api.Chunk) error
}

type Ingester struct {
	store   ChunkStore
	size    int
	overlap int
	logger  *log.Logger
}

func New(store ChunkStore, size, overlap int, logger *log.Logger) (*Ingester, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrBadWindow, size, overlap)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Ingester{store: store, size: size, overlap: overlap, logger: logger}, nil
}

// Summary reports what an ingest run did.
type Summary struct {
	Files  int
	Chunks int
}

// IngestDir walks dir for .txt and .md files and replaces each file's chunks
// in the store. Sources are named by their path relative to dir.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (Summary, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(files)

	var sum Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		rel = filepath.ToSlash(rel)
		n, err := in.IngestFile(ctx, path, rel)
		if err != nil {
			return sum, err
		}
		sum.Files++
		sum.Chunks += n
	}
	in.logger.Printf("ingest: %d files, %d chunks from %s", sum.Files, sum.Chunks, dir)
	return sum, nil
}

// IngestFile chunks a single file under the given source name.
func (in *Ingester) IngestFile(ctx context.Context, path, source string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	chunks := ChunkWords(Clean(string(b)), source, in.size, in.overlap)
	if err := in.store.ReplaceSource(ctx, source, chunks); err != nil {
		return 0, fmt.Errorf("store %s: %w", source, err)
	}
	in.logger.Printf("ingest: %s -> %d chunks", source, len(chunks))
	return len(chunks), nil
}
