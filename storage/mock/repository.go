package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// MockMessageRepository is a test double for storage.MessageRepository.
// By default it answers lookups from the messages added to it.
type MockMessageRepository struct {
	// FindChannelMessageIDsAmongFunc is called by FindChannelMessageIDsAmong if set.
	FindChannelMessageIDsAmongFunc func(ctx context.Context, ids []string) ([]string, error)

	// FindDirectMessageRecordsAmongFunc is called by FindDirectMessageRecordsAmong if set.
	FindDirectMessageRecordsAmongFunc func(ctx context.Context, ids []string, userID string) ([]core.DirectMessageRecord, error)

	mu          sync.Mutex
	messages    map[string]*core.Message
	channelCall int
	directCall  int
}

var _ storage.MessageRepository = (*MockMessageRepository)(nil)

// NewMockMessageRepository creates an empty repository.
func NewMockMessageRepository(messages ...*core.Message) *MockMessageRepository {
	m := &MockMessageRepository{messages: make(map[string]*core.Message)}
	for _, msg := range messages {
		m.messages[msg.ID] = msg
	}
	return m
}

// AddMessages stores messages in memory without validation.
func (m *MockMessageRepository) AddMessages(ctx context.Context, messages ...*core.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.messages[msg.ID] = msg
	}
	return nil
}

// DeleteMessages removes ids from memory.
func (m *MockMessageRepository) DeleteMessages(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.messages, id)
	}
	return nil
}

// GetMessages returns the stored messages among ids, in order.
func (m *MockMessageRepository) GetMessages(ctx context.Context, ids ...string) ([]*core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*core.Message
	for _, id := range ids {
		if msg, ok := m.messages[id]; ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

// FindChannelMessageIDsAmong returns stored channel and summary ids among ids.
func (m *MockMessageRepository) FindChannelMessageIDsAmong(ctx context.Context, ids []string) ([]string, error) {
	m.mu.Lock()
	m.channelCall++
	fn := m.FindChannelMessageIDsAmongFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, id := range ids {
		if msg, ok := m.messages[id]; ok && msg.Kind != core.KindDM {
			out = append(out, id)
		}
	}
	return out, nil
}

// FindDirectMessageRecordsAmong returns stored direct messages among ids involving userID.
func (m *MockMessageRepository) FindDirectMessageRecordsAmong(ctx context.Context, ids []string, userID string) ([]core.DirectMessageRecord, error) {
	m.mu.Lock()
	m.directCall++
	fn := m.FindDirectMessageRecordsAmongFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, ids, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.DirectMessageRecord
	for _, id := range ids {
		msg, ok := m.messages[id]
		if !ok || msg.Kind != core.KindDM {
			continue
		}
		if msg.SenderID == userID || msg.ReceiverID == userID {
			out = append(out, core.DirectMessageRecord{ID: id, SenderID: msg.SenderID, ReceiverID: msg.ReceiverID})
		}
	}
	return out, nil
}

// CountMessages returns the number of stored messages.
func (m *MockMessageRepository) CountMessages(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages), nil
}

// ListMessageIDs pages through stored IDs in ascending order.
func (m *MockMessageRepository) ListMessageIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.messages {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// ChannelLookupCount returns the number of FindChannelMessageIDsAmong calls.
func (m *MockMessageRepository) ChannelLookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channelCall
}

// DirectLookupCount returns the number of FindDirectMessageRecordsAmong calls.
func (m *MockMessageRepository) DirectLookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.directCall
}

// Close is a no-op.
func (m *MockMessageRepository) Close() error {
	return nil
}
