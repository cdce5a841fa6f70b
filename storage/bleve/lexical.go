package bleve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// Hit is a lexical match. Score is BM25 relevance normalized to (0,1]
// against the best hit of the same query.
type Hit struct {
	ID    string
	Score float64
}

// lexicalDocument is the indexed representation of a message.
type lexicalDocument struct {
	Content string `json:"content"`
}

// LexicalIndex wraps a Bleve index for BM25 keyword search over message content.
type LexicalIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
	logger *slog.Logger
}

// NewLexicalIndex opens or creates a Bleve index at path.
// If path is empty, creates an in-memory index.
func NewLexicalIndex(path string) (*LexicalIndex, error) {
	indexMapping := createIndexMapping()
	logger := slog.Default().With("component", "bleve-lexical")

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			logger.Info("creating lexical index", "path", path)
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &LexicalIndex{
		index:  idx,
		path:   path,
		logger: logger,
	}, nil
}

// NewMemoryLexicalIndex creates an in-memory lexical index for testing.
func NewMemoryLexicalIndex() (*LexicalIndex, error) {
	return NewLexicalIndex("")
}

// createIndexMapping analyzes content with the English analyzer so that
// "roles" matches "role" and "hiring" matches "hire".
func createIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName
	return indexMapping
}

// Index adds messages to the index, replacing any with the same ID.
func (l *LexicalIndex) Index(ctx context.Context, messages ...*core.Message) error {
	if len(messages) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return storage.ErrStorageClosed
	}

	batch := l.index.NewBatch()
	for _, m := range messages {
		if err := batch.Index(m.ID, lexicalDocument{Content: m.Content}); err != nil {
			return fmt.Errorf("failed to index message %s: %w", m.ID, err)
		}
	}

	if err := l.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	l.logger.Debug("indexed messages", "count", len(messages))
	return nil
}

// Search returns up to size hits for text, best first, skipping the first
// from hits, along with the total number of matches. Scores are normalized
// against the best match of the whole query, so hits from successive pages
// are comparable.
func (l *LexicalIndex) Search(ctx context.Context, text string, from, size int) ([]Hit, uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, 0, storage.ErrStorageClosed
	}

	if strings.TrimSpace(text) == "" || size <= 0 {
		return []Hit{}, 0, nil
	}

	matchQuery := bleve.NewMatchQuery(text)
	matchQuery.SetField("content")

	searchRequest := bleve.NewSearchRequestOptions(matchQuery, size, max(from, 0), false)

	result, err := l.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	if result.MaxScore <= 0 {
		return hits, result.Total, nil
	}
	for _, hit := range result.Hits {
		if hit.Score <= 0 {
			continue
		}
		hits = append(hits, Hit{ID: hit.ID, Score: hit.Score / result.MaxScore})
	}

	return hits, result.Total, nil
}

// Delete removes messages from the index.
func (l *LexicalIndex) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return storage.ErrStorageClosed
	}

	batch := l.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}

	if err := l.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

// Close closes the index.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.index.Close()
}
