package ai

import "context"

// Generator produces model output for a single prompt. Implementations are
// expected to retry transient provider failures internally; callers treat any
// returned error as a degraded-path trigger, never as fatal.
type Generator interface {
	// GenerateContent returns the model's free-form text response.
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// GenerateJSON returns the model's response constrained to a JSON body.
	// The caller is responsible for parsing and validating the shape.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
