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
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/recollect/ai"
)

// ExpansionSource reports where an expansion lookup was answered from.
type ExpansionSource string

const (
	ExpansionCached   ExpansionSource = "cache"
	ExpansionSynonyms ExpansionSource = "synonyms"
	ExpansionLLM      ExpansionSource = "llm"
	ExpansionNone     ExpansionSource = "none"
	ExpansionFailed   ExpansionSource = "error"
)

// found reports whether the lookup produced an expansion.
func (s ExpansionSource) found() bool {
	return s == ExpansionCached || s == ExpansionSynonyms || s == ExpansionLLM
}

const rephrasePrompt = "Rephrase the following search query for semantic search. " +
	"Keep it short and reply with the rephrased query only.\n\nQuery: %s"

// synonyms is applied word by word to short queries.
var synonyms = map[string]string{
	"hire":     "recruit",
	"hiring":   "recruiting",
	"role":     "position",
	"roles":    "positions",
	"job":      "position",
	"jobs":     "positions",
	"opening":  "vacancy",
	"openings": "vacancies",
	"current":  "latest",
	"now":      "currently",
	"salary":   "compensation",
	"pay":      "compensation",
	"boss":     "manager",
	"mtg":      "meeting",
	"eng":      "engineering",
	"deadline": "due date",
}

type expansionEntry struct {
	timestamp time.Time
	expansion string
}

// ExpansionCache produces alternate phrasings of queries. Generated phrasings
// are kept in a size-bounded LRU and expire after a TTL, checked on read.
// Safe for concurrent use.
type ExpansionCache struct {
	completer     ai.Completer
	entries       *lru.Cache[string, expansionEntry]
	ttl           time.Duration
	shortQueryMax int
	now           func() time.Time
	logger        *slog.Logger
}

// ExpansionOption configures an ExpansionCache.
type ExpansionOption func(*ExpansionCache)

// WithExpansionTTL sets how long generated expansions stay valid.
func WithExpansionTTL(ttl time.Duration) ExpansionOption {
	return func(c *ExpansionCache) {
		c.ttl = ttl
	}
}

// WithShortQueryMaxChars sets the longest query expanded from the synonym table.
func WithShortQueryMaxChars(n int) ExpansionOption {
	return func(c *ExpansionCache) {
		c.shortQueryMax = n
	}
}

// WithExpansionClock replaces time.Now, for tests.
func WithExpansionClock(now func() time.Time) ExpansionOption {
	return func(c *ExpansionCache) {
		c.now = now
	}
}

// WithExpansionLogger sets the logger.
func WithExpansionLogger(logger *slog.Logger) ExpansionOption {
	return func(c *ExpansionCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewExpansionCache creates a cache holding up to size expansions.
func NewExpansionCache(completer ai.Completer, size int, opts ...ExpansionOption) (*ExpansionCache, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	entries, err := lru.New[string, expansionEntry](size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &ExpansionCache{
		completer:     completer,
		entries:       entries,
		ttl:           time.Hour,
		shortQueryMax: 10,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "expansion-cache")
	return c, nil
}

// Expansion returns an alternate phrasing of query, or false when none is available.
// It never fails; completion errors are logged and treated as no expansion.
// Entries are keyed by query exactly as given. The retriever passes normalized
// text, so searches that differ only in case or punctuation share one entry.
func (c *ExpansionCache) Expansion(ctx context.Context, query string) (string, bool) {
	expansion, source := c.lookup(ctx, query)
	return expansion, source.found()
}

// lookup resolves an expansion and reports where it came from.
func (c *ExpansionCache) lookup(ctx context.Context, query string) (string, ExpansionSource) {
	if entry, ok := c.entries.Get(query); ok {
		if c.now().Sub(entry.timestamp) < c.ttl {
			return entry.expansion, ExpansionCached
		}
		c.entries.Remove(query)
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", ExpansionNone
	}

	if len([]rune(trimmed)) <= c.shortQueryMax {
		if expanded := expandSynonyms(trimmed); expanded != trimmed {
			return expanded, ExpansionSynonyms
		}
	}

	out, err := c.completer.Complete(ctx, fmt.Sprintf(rephrasePrompt, trimmed), "")
	if err != nil {
		c.logger.Warn("query expansion failed", "query", trimmed, "err", err)
		return "", ExpansionFailed
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ExpansionNone
	}

	c.entries.Add(query, expansionEntry{timestamp: c.now(), expansion: out})
	return out, ExpansionLLM
}

// Len returns the number of cached expansions, including expired ones not yet read.
func (c *ExpansionCache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached expansion.
func (c *ExpansionCache) Purge() {
	c.entries.Purge()
}

// expandSynonyms replaces each word of q found in the synonym table.
func expandSynonyms(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		if s, ok := synonyms[strings.ToLower(w)]; ok {
			words[i] = s
		}
	}
	return strings.Join(words, " ")
}
