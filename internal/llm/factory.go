package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider builds the configured chain. Each backend is wrapped as
// retry → logging → backend, and the backends are chained for fallback.
// log may be nil to skip request logging.
func NewProvider(ctx context.Context, cfg Config, log RequestLog, logger *slog.Logger) (Provider, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chain := make([]Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		base, err := newBackend(ctx, pc)
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", pc.Name, err)
		}
		p := base
		if log != nil {
			p = WithLogging(p, pc.Name, log, logger)
		}
		chain = append(chain, WithRetry(p, cfg.Retry))
	}
	return WithFallback(chain, cfg.Timeout, logger), nil
}

func newBackend(ctx context.Context, pc ProviderConfig) (Provider, error) {
	switch pc.Name {
	case NameAnthropic:
		return NewAnthropicProvider(pc)
	case NameOpenAI:
		return NewOpenAIProvider(pc)
	case NameOpenRouter:
		return NewOpenRouterProvider(pc)
	case NameGemini:
		return NewGeminiProvider(ctx, pc)
	case NameMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", pc.Name)
	}
}
