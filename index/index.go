// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/badger"
	"github.com/poiesic/recollect/storage/bleve"
)

// Index answers semantic queries from embedded documents in BadgerDB and
// lexical queries from a Bleve BM25 index. Lexical hits are hydrated from
// the document store.
type Index struct {
	docs          *badger.DocumentStore
	lexical       *bleve.LexicalIndex
	embedder      ai.Embedder
	minSimilarity float64
	batchSize     int
	logger        *slog.Logger
}

var (
	_ storage.VectorIndex    = (*Index)(nil)
	_ storage.MessageIndexer = (*Index)(nil)
)

// New creates an Index over the given stores.
func New(docs *badger.DocumentStore, lexical *bleve.LexicalIndex, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if docs == nil {
		return nil, ErrDocumentStoreRequired
	}
	if lexical == nil {
		return nil, ErrLexicalIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	idx := &Index{
		docs:      docs,
		lexical:   lexical,
		embedder:  embedder,
		batchSize: DefaultEmbedBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = idx.logger.With("component", "index")
	return idx, nil
}

// Index embeds messages and makes them retrievable in both modes.
// Messages without an ID get one derived from their content.
func (i *Index) Index(ctx context.Context, messages ...*core.Message) error {
	for start := 0; start < len(messages); start += i.batchSize {
		end := min(start+i.batchSize, len(messages))
		if err := i.indexBatch(ctx, messages[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (i *Index) indexBatch(ctx context.Context, messages []*core.Message) error {
	texts := make([]string, len(messages))
	for n, m := range messages {
		if err := core.ValidateMessage(m); err != nil {
			return err
		}
		if m.ID == "" {
			m.ID = core.MessageIDFromContent(m.Content)
		}
		texts[n] = m.Content
	}

	i.logger.Debug("generating embeddings for messages", "messages", len(texts))
	vectors, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		i.logger.Error("error generating embeddings", "err", err)
		return err
	}
	if len(vectors) != len(messages) {
		return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(messages), len(vectors))
	}

	docs := make([]*core.Document, len(messages))
	for n, m := range messages {
		docs[n] = &core.Document{Message: *m, Vector: vectors[n]}
	}
	if err := i.docs.PutDocuments(ctx, docs...); err != nil {
		return err
	}
	return i.lexical.Index(ctx, messages...)
}

// Remove deletes messages from both retrieval modes. Unknown IDs are ignored.
func (i *Index) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := i.docs.DeleteDocuments(ctx, ids...); err != nil {
		return err
	}
	if err := i.lexical.Delete(ctx, ids...); err != nil {
		return err
	}
	i.logger.Debug("removed messages", "count", len(ids))
	return nil
}

// Query retrieves up to opts.Limit candidates for text in the requested mode.
func (i *Index) Query(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
	switch opts.Mode {
	case storage.ModeSemantic, "":
		return i.querySemantic(ctx, text, opts)
	case storage.ModeLexical:
		return i.queryLexical(ctx, text, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
}

func (i *Index) querySemantic(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
	vector, err := i.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vector) == 0 {
		return []core.SearchResult{}, nil
	}
	return i.docs.FindSimilar(ctx, vector, i.minSimilarity, opts.Limit, opts.UserID)
}

// queryLexical pages through BM25 matches until opts.Limit visible messages
// are collected or the matches run out, so hidden direct messages never
// crowd out visible ones.
func (i *Index) queryLexical(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
	results := make([]core.SearchResult, 0, max(opts.Limit, 0))
	if opts.Limit <= 0 {
		return results, nil
	}

	for from := 0; len(results) < opts.Limit; from += opts.Limit {
		hits, total, err := i.lexical.Search(ctx, text, from, opts.Limit)
		if err != nil {
			return nil, err
		}

		for _, hit := range hits {
			doc, err := i.docs.GetDocument(ctx, hit.ID)
			if errors.Is(err, storage.ErrNotFound) {
				i.logger.Warn("lexical hit missing from document store", "id", hit.ID)
				continue
			}
			if err != nil {
				return nil, err
			}
			if opts.UserID != "" && !doc.VisibleTo(opts.UserID) {
				continue
			}
			results = append(results, core.NewSearchResult(&doc.Message, hit.Score))
			if len(results) == opts.Limit {
				break
			}
		}

		if uint64(from+opts.Limit) >= total {
			break
		}
	}
	return results, nil
}
