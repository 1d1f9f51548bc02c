package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// FallbackProvider tries each provider in order until one succeeds. Each
// attempt gets its own timeout so a hung backend does not starve the rest.
type FallbackProvider struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// WithFallback chains providers. timeout <= 0 disables per-attempt limits.
func WithFallback(providers []Provider, timeout time.Duration, logger *slog.Logger) *FallbackProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackProvider{providers: providers, timeout: timeout, logger: logger}
}

func (f *FallbackProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(f.providers) == 0 {
		return nil, &ErrProviderUnavailable{Err: errors.New("no providers configured")}
	}

	var errs []error
	for i, p := range f.providers {
		resp, err := f.attempt(ctx, p, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, err)
		if i < len(f.providers)-1 {
			f.logger.WarnContext(ctx, "LLM provider failed, trying next",
				"model", p.ModelID(), "next", f.providers[i+1].ModelID(), "error", err)
		}
	}
	if len(errs) == 1 {
		return nil, errs[0]
	}
	return nil, &ErrProviderUnavailable{Err: errors.Join(errs...)}
}

func (f *FallbackProvider) attempt(ctx context.Context, p Provider, req Request) (*Response, error) {
	if f.timeout <= 0 {
		return p.Generate(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return p.Generate(ctx, req)
}

// ModelID reports the primary provider's model.
func (f *FallbackProvider) ModelID() string {
	if len(f.providers) == 0 {
		return ""
	}
	return f.providers[0].ModelID()
}
