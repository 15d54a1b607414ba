package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/store"
)

// NewProvider builds the provider cfg selects, wrapped so every request is
// logged to events.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *zap.Logger) (*LoggingProvider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithLogging(base, cfg.Provider, events, log), nil
}
