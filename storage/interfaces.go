package storage

import (
	"context"

	"github.com/poiesic/recollect/core"
)

// Mode selects the retrieval strategy used by a VectorIndex query.
type Mode string

const (
	// ModeSemantic ranks by embedding similarity.
	ModeSemantic Mode = "semantic"
	// ModeLexical ranks by keyword relevance.
	ModeLexical Mode = "lexical"
)

// QueryOptions parameterizes a VectorIndex query.
type QueryOptions struct {
	// Limit is the maximum number of results returned.
	Limit int
	// Mode selects semantic or lexical retrieval. Empty means semantic.
	Mode Mode
	// UserID, when set, lets the index skip direct messages the user is not part of.
	// It is an optimization only; access control is enforced by the caller.
	UserID string
}

// VectorIndex retrieves candidate messages for a query text.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// Query returns up to opts.Limit results ranked by the index's own score in [0,1].
	// Returns an empty slice, not an error, when nothing matches.
	Query(ctx context.Context, text string, opts QueryOptions) ([]core.SearchResult, error)
}

// MessageIndexer adds messages to a searchable index.
type MessageIndexer interface {
	// Index makes messages retrievable. Re-indexing an existing ID replaces it.
	Index(ctx context.Context, messages ...*core.Message) error
}

// MessageRepository is the relational source of truth for which messages exist
// and who participates in direct messages.
// Implementations must be thread-safe and support concurrent access.
type MessageRepository interface {
	// AddMessages validates and stores messages. Existing IDs are replaced.
	AddMessages(ctx context.Context, messages ...*core.Message) error

	// DeleteMessages removes messages of every kind. Unknown IDs are ignored.
	DeleteMessages(ctx context.Context, ids ...string) error

	// GetMessages retrieves messages by ID.
	// Returns only the messages that exist (no error for missing IDs).
	GetMessages(ctx context.Context, ids ...string) ([]*core.Message, error)

	// FindChannelMessageIDsAmong returns the subset of ids stored as channel or summary messages.
	FindChannelMessageIDsAmong(ctx context.Context, ids []string) ([]string, error)

	// FindDirectMessageRecordsAmong returns the direct messages among ids that userID
	// sent or received, with their participants.
	FindDirectMessageRecordsAmong(ctx context.Context, ids []string, userID string) ([]core.DirectMessageRecord, error)

	// CountMessages returns the number of stored messages of every kind.
	CountMessages(ctx context.Context) (int, error)

	// ListMessageIDs returns up to limit message IDs greater than afterID, in ascending order.
	// Pass an empty afterID to start from the beginning.
	ListMessageIDs(ctx context.Context, afterID string, limit int) ([]string, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
