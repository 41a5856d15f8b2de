package service

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

type AIOptions struct {
	Provider      string
	GroqAPIKey    string
	GroqBaseURL   string
	GroqModel     string
	GeminiAPIKey  string
	GeminiModel   string
	ClaudeAPIKey  string
	ClaudeBaseURL string
	ClaudeModel   string
	Timeout       time.Duration
}

// NewGenerator builds the configured provider. It returns a nil Generator
// and no error when the selected provider has no API key, which puts
// extraction and matching into their no-key fallbacks.
func NewGenerator(ctx context.Context, opts AIOptions) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderGroq:
		if opts.GroqAPIKey == "" {
			return nil, nil
		}
		gen, err := NewGroqGenerator(opts.GroqAPIKey, opts.GroqBaseURL, opts.GroqModel, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case ProviderGemini:
		if opts.GeminiAPIKey == "" {
			return nil, nil
		}
		gen, err := NewGeminiGenerator(ctx, opts.GeminiAPIKey, opts.GeminiModel, "", opts.Timeout)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case ProviderClaude:
		if opts.ClaudeAPIKey == "" {
			return nil, nil
		}
		gen, err := NewClaudeGenerator(opts.ClaudeAPIKey, opts.ClaudeBaseURL, opts.ClaudeModel, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", opts.Provider)
	}
}
