package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/recollect/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder turns message and query text into vectors through an
// OpenAI-compatible embeddings endpoint.
type Embedder struct {
	client embeddings.Embedder
	model  string
	logger *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}

	client, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return newEmbedderWithClient(client, config.EmbeddingModel), nil
}

func newEmbedderWithClient(client embeddings.Embedder, model string) *Embedder {
	return &Embedder{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "openai-embedder", "model", model),
	}
}

// NewEmbedder creates an ai.Embedder from config.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a search query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.client.EmbedDocuments(ctx, []string{scrubString(text)})
	if err != nil {
		e.logger.Error("failed to embed query", "err", err)
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embedding query: %w", ErrEmptyResponse)
	}
	return vectors[0], nil
}

// EmbedTexts embeds message contents in one request. The result has one
// vector per input, in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	scrubbed := make([]string, len(texts))
	chars := 0
	for i, t := range texts {
		scrubbed[i] = scrubString(t)
		chars += len(scrubbed[i])
	}
	e.logger.Debug("embedding messages", "count", len(texts), "chars", chars)

	vectors, err := e.client.EmbedDocuments(ctx, scrubbed)
	if err != nil {
		e.logger.Error("failed to embed messages", "count", len(texts), "err", err)
		return nil, fmt.Errorf("embedding %d messages: %w", len(texts), err)
	}
	return vectors, nil
}
