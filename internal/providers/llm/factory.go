package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/caterbot/internal/config"
	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/log"
)

// NewProvider creates the appropriate Generator based on configuration.
// A missing credential for the selected provider is a startup error: the
// process must not serve traffic without a working generator.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.Generator, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", cfg.Provider)
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for provider %q", cfg.Provider)
		}
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	case "custom":
		if cfg.CustomBaseURL == "" {
			return nil, fmt.Errorf("CUSTOM_OPENAI_BASE_URL is required for provider %q", cfg.Provider)
		}
		return NewCustomOpenAI(cfg.CustomBaseURL, cfg.CustomAPIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
