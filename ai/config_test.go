package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434", cfg.ServerURL)
	assert.Equal(t, "phi3:3.8b", cfg.Model)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 0.4, cfg.Temperature)
}

func TestNewConfig(t *testing.T) {
	t.Run("no options yields defaults", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithServerURL("http://models.internal:11434"),
			WithModel("llama3.2"),
			WithEmbeddingModel("mxbai-embed-large"),
			WithTemperature(0.7),
		)

		assert.Equal(t, "http://models.internal:11434", cfg.ServerURL)
		assert.Equal(t, "llama3.2", cfg.Model)
		assert.Equal(t, "mxbai-embed-large", cfg.EmbeddingModel)
		assert.Equal(t, 0.7, cfg.Temperature)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain url untouched", "http://localhost:11434", "http://localhost:11434"},
		{"trailing slash stripped", "http://localhost:11434/", "http://localhost:11434"},
		{"v1 suffix stripped", "http://localhost:11434/v1", "http://localhost:11434"},
		{"v1 with trailing slash stripped", "http://localhost:11434/v1/", "http://localhost:11434"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithServerURL(tt.in))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.ServerURL)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing server url", func(t *testing.T) {
		cfg := NewConfig(WithServerURL(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("temperature out of range", func(t *testing.T) {
		cfg := NewConfig(WithTemperature(3))
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes", func(t *testing.T) {
		cfg := NewConfig(WithServerURL("http://localhost:11434/v1"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434", cfg.ServerURL)
	})
}
