package driven

import "context"

// LLMService provides language model operations for query rewriting
// and answer assembly.
//
// Implementations may include:
//   - Ollama (local models)
//   - Any inference server with a compatible API
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// RewriteQuery expands or rewrites a retrieval query for better
	// recall. Best-effort: callers fall back to the raw query on error.
	RewriteQuery(ctx context.Context, query, context string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
