package interfaces

import "context"

// LLMService provides text completion for offer analysis
type LLMService interface {
	// Analyze sends a prompt and returns the raw model response text
	Analyze(ctx context.Context, prompt string) (string, error)
	// ModelName returns the configured model identifier
	ModelName() string
}
