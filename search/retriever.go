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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// retrievalCall is one issued query against the index.
// Each call owns its slot; no slot is written by more than one worker.
type retrievalCall struct {
	text    string
	opts    storage.QueryOptions
	expand  bool
	issued  bool
	results []core.SearchResult
	err     error
}

// Retriever issues every retrieval strategy for a query in parallel and
// deduplicates the ranked lists they return.
type Retriever struct {
	index      storage.VectorIndex
	expansions *ExpansionCache
	pool       *ants.Pool
	cfg        *Config
	logger     *slog.Logger
}

// NewRetriever creates a retriever with a worker pool of cfg.PoolSize.
// expansions may be nil, in which case no expansion call is issued.
func NewRetriever(index storage.VectorIndex, expansions *ExpansionCache, cfg *Config, logger *slog.Logger) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("creating retrieval pool: %w", err)
	}

	return &Retriever{
		index:      index,
		expansions: expansions,
		pool:       pool,
		cfg:        cfg,
		logger:     logger.With("component", "retriever"),
	}, nil
}

// Close releases the worker pool.
func (r *Retriever) Close() {
	r.pool.Release()
}

// Retrieve returns one deduplicated ranked list per issued retrieval call, in
// issue order: for each query variation a semantic then a lexical list, then
// the expansion list if an expansion was available.
//
// A failed call contributes an empty list. If every issued call fails,
// ErrRetrievalFailed is returned.
func (r *Retriever) Retrieve(ctx context.Context, query, userID string, intent Intent, monitor SearchMonitor) ([][]core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	normalized := Normalize(query)
	variations := Variations(normalized, intent)

	calls := make([]*retrievalCall, 0, 2*len(variations)+1)
	for _, v := range variations {
		calls = append(calls,
			&retrievalCall{text: v, opts: storage.QueryOptions{Limit: r.cfg.SemanticLimit, Mode: storage.ModeSemantic, UserID: userID}},
			&retrievalCall{text: v, opts: storage.QueryOptions{Limit: r.cfg.LexicalLimit, Mode: storage.ModeLexical, UserID: userID}},
		)
	}
	if r.expansions != nil {
		calls = append(calls, &retrievalCall{
			text:   normalized,
			opts:   storage.QueryOptions{Limit: r.cfg.ExpansionLimit, Mode: storage.ModeSemantic, UserID: userID},
			expand: true,
		})
	}

	var wg sync.WaitGroup
	for _, call := range calls {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			r.run(ctx, call, monitor)
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			call.issued = !call.expand
			call.err = err
		}
	}
	wg.Wait()

	issued, failed := 0, 0
	var firstErr error
	for _, call := range calls {
		if !call.issued {
			continue
		}
		issued++
		if call.err != nil {
			failed++
			if firstErr == nil {
				firstErr = call.err
			}
			r.logger.Warn("retrieval call failed", "mode", call.opts.Mode, "text", call.text, "err", call.err)
		}
	}
	if issued > 0 && failed == issued {
		return nil, fmt.Errorf("%w: all %d calls failed: %w", ErrRetrievalFailed, issued, firstErr)
	}

	lists := make([][]core.SearchResult, 0, len(calls))
	for _, call := range calls {
		if call.issued {
			lists = append(lists, call.results)
		}
	}

	r.logger.Debug("retrieval complete", "variations", len(variations), "issued", issued, "failed", failed)
	return Deduplicate(lists), nil
}

// run executes a single call inside a worker.
func (r *Retriever) run(ctx context.Context, call *retrievalCall, monitor SearchMonitor) {
	if call.expand {
		expansion, source := r.expansions.lookup(ctx, call.text)
		monitor.ExpansionResolved(source)
		if !source.found() {
			return
		}
		call.text = expansion
	}

	call.issued = true
	results, err := r.index.Query(ctx, call.text, call.opts)
	monitor.RetrievalCall(call.opts.Mode, len(results), err)
	if err != nil {
		call.err = err
		return
	}
	call.results = results
}

// Deduplicate drops every result whose message ID appeared in an earlier list,
// or earlier in the same list. The first list to mention an ID owns it.
func Deduplicate(lists [][]core.SearchResult) [][]core.SearchResult {
	seen := make(map[string]struct{})
	out := make([][]core.SearchResult, len(lists))
	for i, list := range lists {
		kept := make([]core.SearchResult, 0, len(list))
		for _, result := range list {
			if _, ok := seen[result.Metadata.MessageID]; ok {
				continue
			}
			seen[result.Metadata.MessageID] = struct{}{}
			kept = append(kept, result)
		}
		out[i] = kept
	}
	return out
}
