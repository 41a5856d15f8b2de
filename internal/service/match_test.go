package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
)

var testJob = model.JobDetails{
	JobTitle:               "Backend Engineer",
	Company:                "Acme",
	CompanyDescription:     "Rockets",
	Responsibilities:       "Build services",
	RequiredQualifications: "Go, PostgreSQL",
}

func TestMatcherScore(t *testing.T) {
	tests := []struct {
		name   string
		gen    Generator
		score  int
		reason string
	}{
		{"no api key", nil, 0, "API Key missing. Cannot analyze."},
		{"upstream failure", &fakeGenerator{err: errors.New("timeout")}, 0, "AI analysis failed."},
		{"unparseable", &fakeGenerator{output: "great fit!"}, 0, "AI analysis failed."},
		{"missing score", &fakeGenerator{output: `{"reasoning":"ok"}`}, 0, "AI analysis failed."},
		{"normal", &fakeGenerator{output: `{"score": 82, "reasoning": "Strong Go match"}`}, 82, "Strong Go match"},
		{"fractional", &fakeGenerator{output: `{"score": 66.6, "reasoning": "x"}`}, 67, "x"},
		{"too high", &fakeGenerator{output: `{"score": 140, "reasoning": "x"}`}, 100, "x"},
		{"negative", &fakeGenerator{output: `{"score": -3, "reasoning": "x"}`}, 0, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMatcher(tt.gen).Score(context.Background(), "resume", testJob)
			assert.Equal(t, model.MatchResult{Score: tt.score, Reasoning: tt.reason}, got)
		})
	}
}

func TestMatcherTruncatesReasoning(t *testing.T) {
	gen := &fakeGenerator{output: `{"score": 50, "reasoning": "` + strings.Repeat("a", 500) + `"}`}
	got := NewMatcher(gen).Score(context.Background(), "resume", testJob)
	assert.Len(t, got.Reasoning, maxReasoningLen)
}

func TestMatcherPrompt(t *testing.T) {
	gen := &fakeGenerator{output: `{"score": 10, "reasoning": "x"}`}
	resume := strings.Repeat("r", maxPromptInput+100)

	NewMatcher(gen).Score(context.Background(), resume, testJob)

	prompt := gen.lastPrompt()
	for _, want := range []string{"Title: Backend Engineer", "Company: Acme", "Description: Rockets",
		"Responsibilities: Build services", "Qualifications: Go, PostgreSQL", "RESUME CONTENT:"} {
		assert.Contains(t, prompt, want)
	}
	parts := strings.SplitN(prompt, "RESUME CONTENT:\n", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("r", maxPromptInput), parts[1])
	assert.Contains(t, gen.systems[0], "High scores (80+) require strong matching")
}
