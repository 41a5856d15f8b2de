package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

const (
	DefaultClaudeBaseURL = "https://api.anthropic.com/v1"
	DefaultClaudeModel   = "claude-sonnet-4-5-20250929"

	claudeMaxTokens = 1500
)

// ClaudeGenerator calls the Anthropic Messages API. There is no JSON mode
// there, so the system prompt alone asks for a bare object and the callers
// strip any fences.
type ClaudeGenerator struct {
	llm *anthropic.LLM
}

func NewClaudeGenerator(apiKey, baseURL, model string, timeout time.Duration) (*ClaudeGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("claude api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultClaudeBaseURL
	}
	if model == "" {
		model = DefaultClaudeModel
	}

	llm, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithBaseURL(baseURL),
		anthropic.WithModel(model),
		anthropic.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating claude client: %w", err)
	}
	return &ClaudeGenerator{llm: llm}, nil
}

func (g *ClaudeGenerator) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(generationTemperature),
		llms.WithMaxTokens(claudeMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	for _, choice := range resp.Choices {
		if choice == nil {
			continue
		}
		if text := strings.TrimSpace(choice.Content); text != "" {
			return text, nil
		}
	}
	return "", errors.New("empty response from Claude")
}
