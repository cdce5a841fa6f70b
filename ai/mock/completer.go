package mock

import (
	"context"
	"fmt"
	"sync"
)

// CompleteCall records the arguments of a single Complete call.
type CompleteCall struct {
	Prompt   string
	Evidence string
}

// MockCompleter is a test double for ai.Completer.
// Safe for concurrent use.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, the prompt is echoed back.
	CompleteFunc func(ctx context.Context, prompt, evidence string) (string, error)

	mu    sync.Mutex
	calls []CompleteCall
}

// NewMockCompleter creates a mock completer with default echo behavior.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the call and delegates to CompleteFunc.
func (m *MockCompleter) Complete(ctx context.Context, prompt, evidence string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, CompleteCall{Prompt: prompt, Evidence: evidence})
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, evidence)
	}
	if evidence != "" {
		return fmt.Sprintf("answer: %s", prompt), nil
	}
	return prompt, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockCompleter) Calls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompleteCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls and custom behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.CompleteFunc = nil
}
