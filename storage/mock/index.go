package mock

import (
	"context"
	"sync"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// QueryCall records the arguments of a single Query call.
type QueryCall struct {
	Text    string
	Options storage.QueryOptions
}

// MockVectorIndex is a test double for storage.VectorIndex.
type MockVectorIndex struct {
	// QueryFunc is called by Query if set.
	// If nil, results registered with SetResults are returned.
	QueryFunc func(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error)

	mu      sync.Mutex
	results map[string][]core.SearchResult
	calls   []QueryCall
}

var _ storage.VectorIndex = (*MockVectorIndex)(nil)

// NewMockVectorIndex creates an index that matches nothing until results are registered.
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{results: make(map[string][]core.SearchResult)}
}

// SetResults registers the results returned for an exact query text, in any mode.
func (m *MockVectorIndex) SetResults(text string, results ...core.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[text] = results
}

// Query records the call and returns registered or custom results.
func (m *MockVectorIndex) Query(ctx context.Context, text string, opts storage.QueryOptions) ([]core.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, QueryCall{Text: text, Options: opts})
	fn := m.QueryFunc
	registered := m.results[text]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, opts)
	}

	out := make([]core.SearchResult, 0, len(registered))
	for _, r := range registered {
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

// CallCount returns the number of Query calls.
func (m *MockVectorIndex) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockVectorIndex) Calls() []QueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]QueryCall, len(m.calls))
	copy(out, m.calls)
	return out
}
