package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// maxPromptInput is how much of a posting or resume is sent upstream
const maxPromptInput = 4000

// Generator is a chat model that answers with a single JSON object.
// Implementations return an error for transport failures, non-2xx
// responses and empty completions.
type Generator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}

// truncateRunes keeps the first n characters of s
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// decodeJSONObject unmarshals a model completion, tolerating markdown
// code fences and chatter around the object.
func decodeJSONObject(raw string, v any) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("parsing model output: %w", err)
	}
	return nil
}

// looseString accepts whatever a model puts in a text field: strings,
// null, numbers, or lists of strings (joined one per line).
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case len(data) > 0 && data[0] == '[':
		var items []looseString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			if line := strings.TrimSpace(string(item)); line != "" {
				lines = append(lines, line)
			}
		}
		*s = looseString(strings.Join(lines, "\n"))
	default:
		*s = looseString(data)
	}
	return nil
}

func (s looseString) trimmed() string {
	return strings.TrimSpace(string(s))
}

func (s looseString) ptr() *string {
	v := s.trimmed()
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}
