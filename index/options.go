package index

import "log/slog"

const (
	// DefaultEmbedBatchSize is the number of messages embedded per embedder call.
	DefaultEmbedBatchSize = 32
)

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		i.logger = logger
	}
}

// WithMinSimilarity drops semantic matches below threshold.
func WithMinSimilarity(threshold float64) Option {
	return func(i *Index) {
		i.minSimilarity = threshold
	}
}

// WithEmbedBatchSize sets how many messages are embedded per embedder call.
// Values below 1 are ignored.
func WithEmbedBatchSize(size int) Option {
	return func(i *Index) {
		if size > 0 {
			i.batchSize = size
		}
	}
}
