package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-8b-instant"

	generationTemperature = 0.1
)

// GroqGenerator talks to Groq, or any other OpenAI-compatible chat
// completions endpoint, in JSON mode.
type GroqGenerator struct {
	llm *openai.LLM
}

func NewGroqGenerator(apiKey, baseURL, model string, timeout time.Duration) (*GroqGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("groq api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	if model == "" {
		model = DefaultGroqModel
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating groq client: %w", err)
	}
	return &GroqGenerator{llm: llm}, nil
}

func (g *GroqGenerator) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(generationTemperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return "", errors.New("groq returned empty content")
	}
	return content, nil
}
