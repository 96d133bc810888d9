package llm

import (
	"context"
	"fmt"
)

type Config struct {
	// Provider is one of gemini, openai, anthropic or mock.
	Provider        string
	Model           string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Retry           RetryPolicy
}

// New builds the configured provider wrapped as
// retry -> logging -> validation -> provider.
func New(ctx context.Context, cfg Config) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model, "")
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.Model)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s provider: %w", cfg.Provider, err)
	}
	return WithRetry(WithLogging(WithValidation(base)), cfg.Retry), nil
}
