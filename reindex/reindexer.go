package reindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// Config holds configuration for a reindex run.
type Config struct {
	// BatchSize is the number of messages indexed per call.
	BatchSize int

	// ReportInterval is how often to report progress, in messages.
	ReportInterval int

	// MaxRetries is the number of attempts per batch.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     time.Second,
	}
}

// Validate checks that every field is usable.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be greater than 0", ErrInvalidConfig)
	case c.ReportInterval <= 0:
		return fmt.Errorf("%w: report interval must be greater than 0", ErrInvalidConfig)
	case c.MaxRetries <= 0:
		return fmt.Errorf("%w: max retries must be greater than 0", ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Reindexer feeds every stored message back through an indexer.
type Reindexer struct {
	repo     storage.MessageRepository
	indexer  storage.MessageIndexer
	config   *Config
	progress io.Writer
	iterator *MessageIterator
	logger   *slog.Logger
}

// NewReindexer creates a reindexer writing progress to progress (typically os.Stderr).
func NewReindexer(repo storage.MessageRepository, indexer storage.MessageIndexer, config *Config, progress io.Writer) (*Reindexer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		repo:     repo,
		indexer:  indexer,
		config:   config,
		progress: progress,
		iterator: NewMessageIterator(repo, config.BatchSize),
		logger:   slog.Default().With("component", "reindexer"),
	}, nil
}

// Run reindexes every stored message and returns the number indexed.
func (r *Reindexer) Run(ctx context.Context) (int, error) {
	total, err := r.repo.CountMessages(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No messages found (0 messages)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Reindexing %d messages (batch size: %d)\n", total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(messages []*core.Message) error {
		err := Retry(ctx, r.config.MaxRetries, r.config.RetryDelay, func(ctx context.Context) error {
			return r.indexer.Index(ctx, messages...)
		})
		if err != nil {
			return fmt.Errorf("failed to index batch starting at %s: %w", messages[0].ID, err)
		}
		processed += len(messages)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		r.logger.Error("reindex aborted", "processed", processed, "err", err)
		return processed, err
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Indexed %d messages in %v\n",
		processed, elapsed.Round(time.Millisecond))
	return processed, nil
}
