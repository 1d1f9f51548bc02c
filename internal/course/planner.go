package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/brightpath/internal/llm"
	"github.com/abhisek/brightpath/internal/performance"
)

// DefaultLessons is used when a request does not say how many lessons.
const DefaultLessons = 4

// Purpose labels planner calls in the LLM request log.
const Purpose = "course-plan"

// ErrInvalidRequest is returned for requests that fail validation.
var ErrInvalidRequest = errors.New("invalid course request")

// Config tunes generation.
type Config struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{MaxTokens: 2048, Temperature: 0.4}
}

// Planner produces course outlines.
type Planner struct {
	provider llm.Provider
	cfg      Config
	validate *validator.Validate
}

// NewPlanner creates a Planner.
func NewPlanner(provider llm.Provider, cfg Config) *Planner {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Planner{
		provider: provider,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Plan asks the model for an outline suited to h.
func (p *Planner) Plan(ctx context.Context, h performance.History, req Request) (*Outline, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := p.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	resp, err := p.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: BuildPrompt(ProfileFromHistory(h), req)}},
		Schema:      OutlineSchema,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate course outline: %w", err)
	}

	var out Outline
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse course outline: %w", err)
	}
	out.Model = resp.Model
	return &out, nil
}
