package port

import "errors"

// Sentinel errors used across ports.
var (
	// ErrEmptyQuery is a precondition violation: the query was missing or
	// blank. It is reported synchronously and never logged as a query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmbeddingFailed means the embedding model was unavailable or
	// rejected the input. No partial work is salvageable.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// LLM failure kinds. The orchestrator converts all of these into a
	// degraded response that still carries the retrieved chunks.
	ErrAuthFailed  = errors.New("llm authentication failed")
	ErrRateLimited = errors.New("llm rate limit exceeded")
	ErrLLMTimeout  = errors.New("llm request timed out")

	ErrDocumentNotFound = errors.New("document not found")
	ErrDuplicateContent = errors.New("document with identical content already exists")
)
