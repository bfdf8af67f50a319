package llm

import (
	"context"
	"errors"
	"fmt"

	"VNIndexAgent/internal/model"
)

// ErrNoCandidates is returned when the provider answers without any candidate.
var ErrNoCandidates = errors.New("no candidates in response")

// Options tunes a single generation call.
type Options struct {
	Search      bool // enable web-search grounding where the provider supports it
	Temperature float32
}

// Result is the text of a generation plus the web sources it was grounded on.
type Result struct {
	Text    string
	Sources []model.Source
}

// Client is the text-generation collaborator.
type Client interface {
	Generate(ctx context.Context, prompt, systemInstruction string, opts Options) (Result, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt, systemInstruction string, opts Options) (Result, error)

func (f ClientFunc) Generate(ctx context.Context, prompt, systemInstruction string, opts Options) (Result, error) {
	return f(ctx, prompt, systemInstruction, opts)
}

// Config selects and configures a provider.
type Config struct {
	Provider string // gemini or openai
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the client for cfg.Provider.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg)
	case "openai":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
