package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/tutoria/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with retry and,
// when eventRepo is non-nil, request logging.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → timeout → retry → logging → base
	if eventRepo != nil {
		base = WithLogging(base, eventRepo, cfg.Provider)
	}
	return WithTimeout(WithRetry(base, cfg.Retry), cfg.Timeout), nil
}

// NewProviderFromEnv builds a provider from TUTORIA_* variables when a
// provider is selected there, and otherwise from whichever vendor API key
// is present. It returns ErrNotConfigured when neither applies.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, error) {
	cfg, ok := EnvConfig()
	if !ok {
		return nil, ErrNotConfigured
	}
	return NewProvider(ctx, cfg, eventRepo)
}

// EnvConfig resolves the configuration NewProviderFromEnv would use.
func EnvConfig() (Config, bool) {
	if os.Getenv("TUTORIA_LLM_PROVIDER") != "" {
		return ConfigFromEnv(), true
	}
	return DiscoverConfig()
}
