package port

import "context"

// EmbeddingProvider abstracts the embedding model. Implementations must be
// safe for concurrent use and semantically stable for a fixed model version
// (same text yields an equivalent vector).
type EmbeddingProvider interface {
	// ModelName returns the identifier of the embedding model.
	ModelName() string

	// Dimension returns the length of vectors produced by this model.
	Dimension() int

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionRequest carries the per-call parameters for an LLM completion.
type CompletionRequest struct {
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// CompletionUsage reports what a completion consumed.
type CompletionUsage struct {
	PromptTokens     int
	CompletionTokens int
	Cost             float64
}

// LLMProvider abstracts the completion backend. Authentication, rate-limit
// and timeout failures must be distinguishable via errors.Is against the
// sentinels in errors.go.
type LLMProvider interface {
	// ModelName returns the default completion model identifier.
	ModelName() string

	// Complete sends a prompt and returns the generated text with usage.
	Complete(ctx context.Context, req CompletionRequest) (string, CompletionUsage, error)
}
