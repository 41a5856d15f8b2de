package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGeneratorRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+DefaultGeminiModel+":generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"score": 40, "reasoning": "Partial overlap"}`}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	gen, err := NewGeminiGenerator(context.Background(), "test-key", "", srv.URL, 5*time.Second)
	require.NoError(t, err)

	result := NewMatcher(gen).Score(context.Background(), "resume text", testJob)
	assert.Equal(t, 40, result.Score)
	assert.Equal(t, "Partial overlap", result.Reasoning)

	cfg, ok := got["generationConfig"].(map[string]any)
	require.True(t, ok, "request carries generationConfig")
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.InDelta(t, 0.1, cfg["temperature"], 1e-6)
	assert.Contains(t, got, "systemInstruction")
}

func TestGeminiGeneratorFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"unavailable","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	gen, err := NewGeminiGenerator(context.Background(), "test-key", "", srv.URL, 5*time.Second)
	require.NoError(t, err)

	result := NewMatcher(gen).Score(context.Background(), "resume text", testJob)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, matchFailedReasoning, result.Reasoning)
}
