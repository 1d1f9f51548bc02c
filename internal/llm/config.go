package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in ProviderConfig.Name.
const (
	NameAnthropic  = "anthropic"
	NameOpenAI     = "openai"
	NameGemini     = "gemini"
	NameOpenRouter = "openrouter"
	NameMock       = "mock"
)

// defaultModels is used when a ProviderConfig leaves Model empty.
var defaultModels = map[string]string{
	NameAnthropic:  "claude-haiku",
	NameOpenAI:     "gpt-4o-mini",
	NameGemini:     "gemini-flash",
	NameOpenRouter: "google/gemini-2.0-flash-exp",
}

// ProviderConfig configures one backend.
type ProviderConfig struct {
	Name    string `mapstructure:"name" json:"name"`
	APIKey  string `mapstructure:"api_key" json:"-"`
	Model   string `mapstructure:"model" json:"model,omitempty"`
	BaseURL string `mapstructure:"base_url" json:"base_url,omitempty"`
}

// ModelOrDefault returns the configured model or the backend's default.
func (p ProviderConfig) ModelOrDefault() string {
	if p.Model != "" {
		return p.Model
	}
	return defaultModels[p.Name]
}

// Validate checks that the backend is known and has a key.
func (p ProviderConfig) Validate() error {
	switch p.Name {
	case NameAnthropic, NameOpenAI, NameGemini, NameOpenRouter:
		if p.APIKey == "" {
			return fmt.Errorf("%s: API key is required", p.Name)
		}
	case NameMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", p.Name)
	}
	return nil
}

// RetryConfig controls backoff on transient failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// Config is the full LLM setup. Providers are tried in order; later entries
// are fallbacks for earlier ones.
type Config struct {
	Providers []ProviderConfig `mapstructure:"providers"`
	Retry     RetryConfig      `mapstructure:"retry"`

	// Timeout bounds one provider's attempt, retries included.
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig has no providers; course planning stays off until one is
// configured or discovered.
func DefaultConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// Enabled reports whether any provider is configured.
func (c Config) Enabled() bool {
	return len(c.Providers) > 0
}

// Validate checks every provider. An empty list is valid.
func (c Config) Validate() error {
	var errs []error
	for i, p := range c.Providers {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("providers[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// discoveryOrder lists the conventional API key variables probed by
// ConfigFromEnv.
var discoveryOrder = []struct{ name, env string }{
	{NameGemini, "GEMINI_API_KEY"},
	{NameOpenAI, "OPENAI_API_KEY"},
	{NameAnthropic, "ANTHROPIC_API_KEY"},
	{NameOpenRouter, "OPENROUTER_API_KEY"},
}

// ConfigFromEnv builds a provider chain from the environment.
//
// BRIGHTPATH_LLM_PROVIDER, BRIGHTPATH_LLM_API_KEY, BRIGHTPATH_LLM_MODEL and
// BRIGHTPATH_LLM_BASE_URL describe the primary provider. Every other backend
// whose conventional key variable (GEMINI_API_KEY and friends) is set is
// appended as a fallback.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	seen := make(map[string]bool)

	if name := strings.ToLower(strings.TrimSpace(os.Getenv("BRIGHTPATH_LLM_PROVIDER"))); name != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Name:    name,
			APIKey:  os.Getenv("BRIGHTPATH_LLM_API_KEY"),
			Model:   os.Getenv("BRIGHTPATH_LLM_MODEL"),
			BaseURL: os.Getenv("BRIGHTPATH_LLM_BASE_URL"),
		})
		seen[name] = true
	}

	for _, d := range discoveryOrder {
		if seen[d.name] {
			continue
		}
		if key := os.Getenv(d.env); key != "" {
			cfg.Providers = append(cfg.Providers, ProviderConfig{Name: d.name, APIKey: key})
			seen[d.name] = true
		}
	}
	return cfg
}
