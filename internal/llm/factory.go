package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/store"
)

// NewProvider builds the configured provider wrapped as
// caller → retry → logging → SDK.
func NewProvider(ctx context.Context, cfg Config, repo store.LLMEventRepo, logger logging.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, cfg.Provider, repo, logger), cfg.Retry), nil
}
