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

package recollect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/ai/openai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/index"
	"github.com/poiesic/recollect/reindex"
	"github.com/poiesic/recollect/search"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/badger"
	"github.com/poiesic/recollect/storage/bleve"
	"github.com/poiesic/recollect/storage/sqlite"
)

// Paths locates the on-disk stores of an Engine.
type Paths struct {
	Messages  string // SQLite database file
	Documents string // BadgerDB directory
	Lexical   string // Bleve index directory
}

// PathsIn returns the standard store layout under dir.
func PathsIn(dir string) Paths {
	return Paths{
		Messages:  filepath.Join(dir, "messages.db"),
		Documents: filepath.Join(dir, "documents"),
		Lexical:   filepath.Join(dir, "lexical.bleve"),
	}
}

// Engine owns the message store, the retrieval index and the AI provider,
// and builds searchers over them.
type Engine struct {
	repo     storage.MessageRepository
	docs     *badger.DocumentStore
	lexical  *bleve.LexicalIndex
	index    *index.Index
	provider ai.AIProvider
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithAIConfig sets the configuration used to build the OpenAI-compatible provider.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider uses provider instead of building one. The engine takes ownership.
func WithAIProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens or creates every store at paths.
func Open(paths Paths, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	repo, err := sqlite.NewMessageRepository(paths.Messages)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(paths.Documents, false)
	if err != nil {
		repo.Close()
		return nil, err
	}
	docs := badger.NewDocumentStore(backend)

	lexical, err := bleve.NewLexicalIndex(paths.Lexical)
	if err != nil {
		docs.Close()
		repo.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			lexical.Close()
			docs.Close()
			repo.Close()
			return nil, err
		}
	}

	idx, err := index.New(docs, lexical, provider.Embedder(), index.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		lexical.Close()
		docs.Close()
		repo.Close()
		return nil, err
	}

	return &Engine{
		repo:     repo,
		docs:     docs,
		lexical:  lexical,
		index:    idx,
		provider: provider,
		logger:   options.logger.With("component", "engine"),
	}, nil
}

// Close releases the provider and every store.
func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	var errs []error
	if err := e.lexical.Close(); err != nil {
		e.logger.Error("error closing lexical index", "err", err)
		errs = append(errs, err)
	}
	if err := e.docs.Close(); err != nil {
		e.logger.Error("error closing document store", "err", err)
		errs = append(errs, err)
	}
	if err := e.repo.Close(); err != nil {
		e.logger.Error("error closing message repository", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Add stores messages and indexes them for retrieval.
// Messages without an ID get one derived from their content.
func (e *Engine) Add(ctx context.Context, messages ...*core.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := e.repo.AddMessages(ctx, messages...); err != nil {
		return err
	}
	if err := e.index.Index(ctx, messages...); err != nil {
		return err
	}
	e.logger.Info("added messages", "count", len(messages))
	return nil
}

// Delete removes messages from the message store and the retrieval index.
func (e *Engine) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := e.repo.DeleteMessages(ctx, ids...); err != nil {
		return err
	}
	if err := e.index.Remove(ctx, ids...); err != nil {
		return err
	}
	e.logger.Info("deleted messages", "count", len(ids))
	return nil
}

// MessageRepository returns the relational message store.
func (e *Engine) MessageRepository() storage.MessageRepository {
	return e.repo
}

// Index returns the retrieval index.
func (e *Engine) Index() storage.VectorIndex {
	return e.index
}

// NewSearcher creates a searcher over the engine's stores.
// The caller must Close the searcher.
func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(e.index, e.repo, e.provider.Completer(), opts...)
}

// Reindex rebuilds the retrieval index from the message store, writing
// progress to progress. A nil cfg uses reindex.DefaultConfig.
func (e *Engine) Reindex(ctx context.Context, cfg *reindex.Config, progress io.Writer) (int, error) {
	r, err := reindex.NewReindexer(e.repo, e.index, cfg, progress)
	if err != nil {
		return 0, err
	}
	return r.Run(ctx)
}
