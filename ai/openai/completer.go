// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/recollect/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return newCompleterWithModel(client, config.Temperature), nil
}

// newCompleterWithModel wraps an existing langchaingo model.
func newCompleterWithModel(client llms.Model, temperature float64) *Completer {
	return &Completer{
		client:      client,
		temperature: temperature,
		logger:      slog.Default().With("component", "openai-completer"),
	}
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete sends prompt to the model. When evidence is non-empty the model is
// instructed to answer from the supplied messages only; otherwise prompt is
// sent as-is.
func (c *Completer) Complete(ctx context.Context, prompt, evidence string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt(evidence))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt(prompt, evidence))},
		},
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model")
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("completion generated", "length", len(text), "grounded", evidence != "")
	return text, nil
}
