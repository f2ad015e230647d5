package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"aquaform/internal/models"
)

// extractJSON returns the outermost {...} span of text.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", false
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// decodeSuggestion parses a model answer, tolerating prose or code fences
// around the JSON object.
func decodeSuggestion(text string) (*models.Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}
	raw, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object in AI response")
	}
	var s models.Suggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode AI response: %w", err)
	}
	return &s, nil
}
