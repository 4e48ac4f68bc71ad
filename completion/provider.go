package completion

import (
	"context"
	"fmt"

	"github.com/imkonsowa/grocery-rag/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel builds the langchaingo backend named by cfg.Provider.
func NewModel(ctx context.Context, cfg config.LLM) (llms.Model, error) {
	switch cfg.Provider {
	case "googleai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("googleai provider requires llm.apiKey")
		}

		return googleai.New(
			ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Composer.Name),
		)
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.Address()),
			ollama.WithModel(cfg.Composer.Name),
		)
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Composer.Name),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}

		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func FromConfig(ctx context.Context, cfg config.LLM) (*Client, error) {
	llm, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", cfg.Provider, err)
	}

	return New(llm, WithTimeout(cfg.Timeout)), nil
}
