package search

import (
	"fmt"
	"time"
)

// Config holds the ranking and retrieval tunables.
type Config struct {
	// RRFK is the rank offset k in 1/(k+r+1).
	RRFK int

	// SemanticLimit and LexicalLimit bound each per-variation retrieval call.
	SemanticLimit int
	LexicalLimit  int

	// ExpansionLimit bounds the retrieval call issued for a query expansion.
	ExpansionLimit int

	// UnscoredScore replaces a zero retrieval score during fusion.
	UnscoredScore float64

	// DirectMessageBoost multiplies the fused score of direct messages.
	DirectMessageBoost float64

	// RecencyWindow is the maximum age of a "recent" message.
	RecencyWindow time.Duration

	// RecencyBoost multiplies recent messages when the query asks about the present.
	RecencyBoost float64

	// FinalDirectMessageBoost is added to direct messages before truncation.
	FinalDirectMessageBoost float64

	// MaxEvidence is the number of results handed to answer synthesis.
	MaxEvidence int

	// ExpansionTTL is how long a generated query expansion stays cached.
	ExpansionTTL time.Duration

	// ExpansionCacheSize bounds the number of cached expansions.
	ExpansionCacheSize int

	// ShortQueryMaxChars is the longest query, after trimming, expanded from the synonym table.
	ShortQueryMaxChars int

	// PoolSize is the number of workers issuing retrieval calls.
	PoolSize int
}

// DefaultConfig returns the standard ranking configuration.
func DefaultConfig() *Config {
	return &Config{
		RRFK:                    10,
		SemanticLimit:           20,
		LexicalLimit:            20,
		ExpansionLimit:          15,
		UnscoredScore:           0.5,
		DirectMessageBoost:      1.2,
		RecencyWindow:           7 * 24 * time.Hour,
		RecencyBoost:            1.5,
		FinalDirectMessageBoost: 0.2,
		MaxEvidence:             10,
		ExpansionTTL:            time.Hour,
		ExpansionCacheSize:      1024,
		ShortQueryMaxChars:      10,
		PoolSize:                16,
	}
}

// Validate checks that all tunables are usable.
func (c *Config) Validate() error {
	switch {
	case c.RRFK < 0:
		return fmt.Errorf("%w: rrf k must not be negative", ErrInvalidConfig)
	case c.SemanticLimit < 1 || c.LexicalLimit < 1 || c.ExpansionLimit < 1:
		return fmt.Errorf("%w: retrieval limits must be positive", ErrInvalidConfig)
	case c.UnscoredScore <= 0:
		return fmt.Errorf("%w: unscored score must be positive", ErrInvalidConfig)
	case c.DirectMessageBoost <= 0 || c.RecencyBoost <= 0:
		return fmt.Errorf("%w: boost multipliers must be positive", ErrInvalidConfig)
	case c.FinalDirectMessageBoost < 0:
		return fmt.Errorf("%w: final direct message boost must not be negative", ErrInvalidConfig)
	case c.RecencyWindow < 0:
		return fmt.Errorf("%w: recency window must not be negative", ErrInvalidConfig)
	case c.MaxEvidence < 1:
		return fmt.Errorf("%w: max evidence must be positive", ErrInvalidConfig)
	case c.ExpansionTTL <= 0:
		return fmt.Errorf("%w: expansion ttl must be positive", ErrInvalidConfig)
	case c.ExpansionCacheSize < 1:
		return fmt.Errorf("%w: expansion cache size must be positive", ErrInvalidConfig)
	case c.ShortQueryMaxChars < 0:
		return fmt.Errorf("%w: short query length must not be negative", ErrInvalidConfig)
	case c.PoolSize < 1:
		return fmt.Errorf("%w: pool size must be positive", ErrInvalidConfig)
	}
	return nil
}
