package reindex

import (
	"context"
	"fmt"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// DefaultBatchSize is the number of messages fetched per page.
const DefaultBatchSize = 100

// MessageIterator pages through every stored message in ID order.
type MessageIterator struct {
	repo      storage.MessageRepository
	batchSize int
}

// NewMessageIterator creates an iterator. A non-positive batchSize uses DefaultBatchSize.
func NewMessageIterator(repo storage.MessageRepository, batchSize int) *MessageIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &MessageIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn with each page of messages until the store is exhausted,
// fn fails or ctx ends. Pages are keyed by the last ID seen, so messages added
// during iteration with larger IDs are included.
func (it *MessageIterator) ForEach(ctx context.Context, fn func([]*core.Message) error) error {
	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ids, err := it.repo.ListMessageIDs(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		messages, err := it.repo.GetMessages(ctx, ids...)
		if err != nil {
			return fmt.Errorf("loading page after %q: %w", after, err)
		}
		if len(messages) > 0 {
			if err := fn(messages); err != nil {
				return err
			}
		}

		if len(ids) < it.batchSize {
			return nil
		}
		after = ids[len(ids)-1]
	}
}
