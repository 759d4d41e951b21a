package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// NewProvider builds the configured provider wrapped as
// caller → retry → recording → vendor SDK.
func NewProvider(ctx context.Context, cfg Config, sink EventSink, log zerolog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		return NewMockProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	log = log.With().Str("component", "llm").Logger()
	return WithRetry(WithRecording(base, cfg.Provider, sink, log), cfg.Retry, log), nil
}

// NewProviderFromEnv resolves configuration from ANIQUIZ_* variables, then
// from vendor key variables. ok is false when no key is configured anywhere.
func NewProviderFromEnv(ctx context.Context, sink EventSink, log zerolog.Logger) (p Provider, ok bool, err error) {
	cfg := ConfigFromEnv()
	if cfg.Validate() != nil {
		discovered, found := DiscoverConfig()
		if !found {
			return nil, false, nil
		}
		cfg = discovered
	}
	p, err = NewProvider(ctx, cfg, sink, log)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
