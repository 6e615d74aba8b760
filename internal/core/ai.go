package core

import "context"

// EmbeddingProvider turns texts into vectors. Implementations return vectors
// in their model's native dimension; callers reconcile to the index width.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// WithModel returns a provider bound to another model name; an empty
	// name returns the receiver unchanged.
	WithModel(model string) EmbeddingProvider
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

	// GenerateJSON is Generate with the provider constrained to emit a JSON
	// object as its whole response.
	GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
