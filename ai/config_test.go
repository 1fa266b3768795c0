package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.ChatHost)
	assert.Equal(t, EmbeddingHashing, cfg.EmbeddingBackend)
	assert.Equal(t, 512, cfg.EmbedDim)
	assert.True(t, cfg.Offline())
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with api key", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"), WithChatModel("gpt-4o-mini"))
		assert.False(t, cfg.Offline())
		assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	})

	t.Run("with remote embeddings", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingBackend(EmbeddingRemote),
			WithEmbeddingHost("http://embed:8080"),
			WithEmbeddingModel("text-embedding-3-small"),
		)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
	})

	t.Run("with dimension and temperature", func(t *testing.T) {
		cfg := NewConfig(WithEmbedDim(64), WithTemperature(0), WithChatHost("http://chat/"))
		assert.Equal(t, 64, cfg.EmbedDim)
		assert.Equal(t, 0.0, cfg.Temperature)
		assert.Equal(t, "http://chat/", cfg.ChatHost)
	})
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"adds suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps suffix", "https://openrouter.ai/api/v1", "https://openrouter.ai/api/v1"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ChatHost: tt.in}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.ChatHost)
			assert.Equal(t, EmbeddingHashing, cfg.EmbeddingBackend)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name:    "online without model",
			cfg:     NewConfig(WithAPIKey("k"), WithChatModel("")),
			wantErr: "ChatModel is required",
		},
		{
			name:    "online without host",
			cfg:     NewConfig(WithAPIKey("k"), WithChatHost("")),
			wantErr: "ChatHost is required",
		},
		{
			name:    "zero dimension",
			cfg:     NewConfig(WithEmbedDim(0)),
			wantErr: "EmbedDim must be positive",
		},
		{
			name:    "remote without model",
			cfg:     NewConfig(WithEmbeddingBackend(EmbeddingRemote), WithEmbeddingModel("")),
			wantErr: "EmbeddingModel is required",
		},
		{
			name:    "unknown backend",
			cfg:     NewConfig(WithEmbeddingBackend("quantum")),
			wantErr: "unknown EmbeddingBackend",
		},
		{
			name:    "temperature out of range",
			cfg:     NewConfig(WithTemperature(3)),
			wantErr: "Temperature must be between 0 and 2",
		},
		{
			name: "offline ignores chat settings",
			cfg:  NewConfig(WithChatModel(""), WithChatHost("")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
