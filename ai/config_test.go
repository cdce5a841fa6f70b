package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.CompletionHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.CompletionModel)
	assert.Equal(t, "none", cfg.Token)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.CompletionHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.CompletionHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithCompletionHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.CompletionHost)
	})

	t.Run("with custom models and token", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithCompletionModel("gpt-4o-mini"),
			WithToken("sk-test"),
			WithTemperature(0.7),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.CompletionModel)
		assert.Equal(t, "sk-test", cfg.Token)
		assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "adds suffix", in: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "strips trailing slash", in: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "keeps existing suffix", in: "http://localhost:11434/v1", want: "http://localhost:11434/v1"},
		{name: "leaves empty host", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.in, CompletionHost: tt.in}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, tt.want, cfg.CompletionHost)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost")
	})

	t.Run("missing completion host", func(t *testing.T) {
		cfg := NewConfig(WithCompletionHost(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CompletionHost")
	})

	t.Run("missing models", func(t *testing.T) {
		require.Error(t, NewConfig(WithEmbeddingModel("")).Validate())
		require.Error(t, NewConfig(WithCompletionModel("")).Validate())
	})

	t.Run("temperature out of range", func(t *testing.T) {
		err := NewConfig(WithTemperature(3)).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Temperature")
	})
}
