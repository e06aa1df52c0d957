package interview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// analysisResult is the parsed shape of the combined analysis response.
type analysisResult struct {
	Sentiment    Sentiment
	NextQuestion string
	Probe        bool
	// Fallback marks results synthesized after the gateway or the parser
	// failed on every attempt.
	Fallback bool
}

// parseAnalysis validates the model's combined analysis response. Any shape
// violation, including an unknown sentiment label, is an error so the caller
// can apply the same retry/fallback policy as for a failed gateway call.
func parseAnalysis(raw string) (analysisResult, error) {
	data, err := unmarshalObject(raw)
	if err != nil {
		return analysisResult{}, fmt.Errorf("parse analysis response: %w", err)
	}

	sentiment, err := ParseSentiment(coerceString(data["sentiment"]))
	if err != nil {
		return analysisResult{}, err
	}

	next := coerceString(data["next_question"])
	probe := coerceBool(data["probe_deeper"])
	if next == "" {
		// A probe signal without a question is unusable.
		probe = false
	}

	return analysisResult{Sentiment: sentiment, NextQuestion: next, Probe: probe}, nil
}

// parseSummary validates the model's final summary response.
func parseSummary(raw string) (*Summary, error) {
	data, err := unmarshalObject(raw)
	if err != nil {
		return nil, fmt.Errorf("parse summary response: %w", err)
	}

	assessment := coerceString(data["assessment"])
	if assessment == "" {
		return nil, fmt.Errorf("summary response has no assessment")
	}

	recommendation, err := ParseRecommendation(coerceString(data["recommendation"]))
	if err != nil {
		return nil, err
	}

	return &Summary{Assessment: assessment, Recommendation: recommendation}, nil
}

func unmarshalObject(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its JSON body.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		// null stays empty; anything else is not a usable string.
		return ""
	}
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}
