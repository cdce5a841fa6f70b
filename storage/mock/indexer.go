package mock

import (
	"context"
	"sync"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// MockIndexer is a test double for storage.MessageIndexer.
type MockIndexer struct {
	// IndexFunc is called by Index if set.
	IndexFunc func(ctx context.Context, messages ...*core.Message) error

	mu      sync.Mutex
	batches [][]*core.Message
}

var _ storage.MessageIndexer = (*MockIndexer)(nil)

// NewMockIndexer creates an indexer that accepts everything.
func NewMockIndexer() *MockIndexer {
	return &MockIndexer{}
}

// Index records the batch and delegates to IndexFunc.
func (m *MockIndexer) Index(ctx context.Context, messages ...*core.Message) error {
	m.mu.Lock()
	m.batches = append(m.batches, messages)
	fn := m.IndexFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages...)
	}
	return nil
}

// Batches returns every batch passed to Index, including failed attempts.
func (m *MockIndexer) Batches() [][]*core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*core.Message, len(m.batches))
	copy(out, m.batches)
	return out
}
