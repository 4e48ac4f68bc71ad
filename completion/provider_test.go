package completion

import (
	"context"
	"testing"

	"github.com/imkonsowa/grocery-rag/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	base := config.LLM{
		Host:     "localhost",
		Port:     "11434",
		Composer: config.Model{Name: "llama3.2"},
	}

	t.Run("ollama", func(t *testing.T) {
		cfg := base
		cfg.Provider = "ollama"

		llm, err := NewModel(context.Background(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, llm)
	})

	t.Run("openai", func(t *testing.T) {
		cfg := base
		cfg.Provider = "openai"
		cfg.APIKey = "sk-test"
		cfg.BaseURL = "http://localhost:1234/v1"

		llm, err := NewModel(context.Background(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, llm)
	})

	t.Run("googleai without key", func(t *testing.T) {
		cfg := base
		cfg.Provider = "googleai"

		_, err := NewModel(context.Background(), cfg)
		assert.ErrorContains(t, err, "apiKey")
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := base
		cfg.Provider = "mystery"

		_, err := FromConfig(context.Background(), cfg)
		assert.ErrorContains(t, err, "unsupported llm provider")
	})
}
