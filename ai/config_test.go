package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.SpotterHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.SynthHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "qwen2.5:3b", cfg.SpotterModel)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, 0.5, cfg.MinConfidence)
	assert.Empty(t, cfg.TTSModel)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.SpotterHost)
		assert.Equal(t, 0.5, cfg.MinConfidence)
	})

	t.Run("with shared host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.SpotterHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.SynthHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithSpotterHost("http://spotter:8080/v1"),
			WithSynthHost("http://synth:8080/v1"),
			WithEmbeddingHost("http://embed:8080/v1"),
		)

		assert.Equal(t, "http://spotter:8080/v1", cfg.SpotterHost)
		assert.Equal(t, "http://synth:8080/v1", cfg.SynthHost)
		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("with models", func(t *testing.T) {
		cfg := NewConfig(
			WithSpotterModel("gpt-4o"),
			WithSynthModel("gpt-4o-mini"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithTTSModel("tts-1"),
		)

		assert.Equal(t, "gpt-4o", cfg.SpotterModel)
		assert.Equal(t, "gpt-4o-mini", cfg.SynthModel)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "tts-1", cfg.TTSModel)
	})
}

func TestConfigNormalize(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434"))
	cfg.Normalize()

	// The /v1 suffix is added automatically for OpenAI-compatible APIs.
	assert.Equal(t, "http://localhost:11434/v1", cfg.SpotterHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.SynthHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		require.NoError(t, NewConfig().Validate())
	})

	t.Run("missing spotter host", func(t *testing.T) {
		cfg := NewConfig(WithSpotterHost(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing synth model", func(t *testing.T) {
		cfg := NewConfig(WithSynthModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("confidence out of range", func(t *testing.T) {
		cfg := NewConfig(WithMinConfidence(1.5))
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty tts model is valid", func(t *testing.T) {
		cfg := NewConfig(WithTTSModel(""))
		require.NoError(t, cfg.Validate())
	})
}
