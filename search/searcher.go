package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// Searcher answers questions over message history a user is allowed to see.
type Searcher struct {
	index      storage.VectorIndex
	repo       storage.MessageRepository
	completer  ai.Completer
	cfg        *Config
	now        func() time.Time
	expansions *ExpansionCache
	ownsCache  bool
	retriever  *Retriever
	filter     *PermissionFilter
	assembler  *Assembler
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the default tunables.
func WithConfig(cfg *Config) Option {
	return func(s *Searcher) error {
		if cfg == nil {
			return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.cfg = cfg
		return nil
	}
}

// WithClock sets the time source used for recency and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// WithExpansionCache shares an expansion cache between searchers.
// A shared cache is not purged when the searcher is closed.
func WithExpansionCache(cache *ExpansionCache) Option {
	return func(s *Searcher) error {
		s.expansions = cache
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	index storage.VectorIndex,
	repo storage.MessageRepository,
	completer ai.Completer,
	opts ...Option,
) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if repo == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}

	s := &Searcher{
		index:     index,
		repo:      repo,
		completer: completer,
		cfg:       DefaultConfig(),
		now:       time.Now,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	if s.expansions == nil {
		cache, err := NewExpansionCache(completer, s.cfg.ExpansionCacheSize,
			WithExpansionTTL(s.cfg.ExpansionTTL),
			WithShortQueryMaxChars(s.cfg.ShortQueryMaxChars),
			WithExpansionClock(s.now),
			WithExpansionLogger(s.logger),
		)
		if err != nil {
			return nil, err
		}
		s.expansions = cache
		s.ownsCache = true
	}

	var err error
	if s.retriever, err = NewRetriever(index, s.expansions, s.cfg, s.logger); err != nil {
		return nil, err
	}
	if s.filter, err = NewPermissionFilter(repo, s.logger); err != nil {
		s.retriever.Close()
		return nil, err
	}
	if s.assembler, err = NewAssembler(completer, s.cfg, s.logger); err != nil {
		s.retriever.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the retrieval worker pool. The searcher must not be used afterwards.
func (s *Searcher) Close() error {
	s.retriever.Close()
	if s.ownsCache {
		s.expansions.Purge()
	}
	return nil
}

// PerformSearch answers query for userID from the messages they may see.
func (s *Searcher) PerformSearch(ctx context.Context, query, userID string) (*core.Answer, error) {
	return s.PerformSearchWithMonitor(ctx, query, userID, nil)
}

// PerformSearchWithMonitor answers query for userID with monitoring.
// The monitor receives callbacks at each stage of the search process.
//
// Invalid input returns ErrInvalidQuery. Any other failure wraps
// ErrSearchFailed together with the stage error.
func (s *Searcher) PerformSearchWithMonitor(ctx context.Context, query, userID string, monitor SearchMonitor) (*core.Answer, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, userID)

	if Normalize(query) == "" || userID == "" {
		monitor.Finish(nil, ErrInvalidQuery)
		return nil, ErrInvalidQuery
	}

	fail := func(err error) (*core.Answer, error) {
		err = fmt.Errorf("%w: %w", ErrSearchFailed, err)
		monitor.Finish(nil, err)
		return nil, err
	}

	// 1. Analyze
	intent := ClassifyIntent(query)

	// 2. Retrieve across variations and modes
	lists, err := s.retriever.Retrieve(ctx, query, userID, intent, monitor)
	if err != nil {
		s.logger.Error("retrieval failed", "err", err)
		return fail(err)
	}
	monitor.AfterRetrieval(lists)

	// 3. Fuse
	fused := Fuse(lists, intent, s.now(), s.cfg)
	monitor.AfterFusion(fused)

	// 4. Filter by access
	permitted, err := s.filter.Filter(ctx, fused, userID)
	if err != nil {
		return fail(err)
	}
	monitor.AfterPermissionFilter(permitted)

	// 5. Synthesize
	answer, err := s.assembler.Assemble(ctx, query, permitted)
	if err != nil {
		return fail(err)
	}

	s.logger.Debug("search complete",
		"intent", intent,
		"lists", len(lists),
		"fused", len(fused),
		"permitted", len(permitted),
		"evidence", len(answer.Evidence))
	monitor.Finish(answer, nil)
	return answer, nil
}
