package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
)

// DefaultDimension is the length of vectors produced by MockEmbedder.
const DefaultDimension = 384

// MockEmbedder is a test double for ai.Embedder. Identical texts always map
// to identical unit vectors, so a query equal to a message content has
// cosine similarity 1 with it. Components are non-negative, so unrelated
// texts still score well above zero.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension overrides DefaultDimension when positive.
	Dimension int

	mu    sync.Mutex
	calls int
	texts []string
}

// NewMockEmbedder creates an embedder with deterministic hash-based vectors.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns the vector for text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	fn := m.record(text)
	if fn := fn.single; fn != nil {
		return fn(ctx, text)
	}
	return m.vector(text), nil
}

// EmbedTexts returns one vector per text.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	fn := m.record(texts...)
	if fn := fn.batch; fn != nil {
		return fn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vector(text)
	}
	return vectors, nil
}

type embedFuncs struct {
	single func(ctx context.Context, text string) ([]float32, error)
	batch  func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) record(texts ...string) embedFuncs {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts = append(m.texts, texts...)
	return embedFuncs{single: m.EmbedTextFunc, batch: m.EmbedTextsFunc}
}

// CallCount returns the number of EmbedText and EmbedTexts calls.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Texts returns every text embedded so far, in call order.
func (m *MockEmbedder) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Reset clears recorded calls and custom behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.texts = nil
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEmbedder) vector(text string) []float32 {
	dim := m.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	v := make([]float32, dim)
	var norm float64
	for i := range v {
		// xorshift64
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v[i] = float32(state%1000) / 1000
		norm += float64(v[i]) * float64(v[i])
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}
