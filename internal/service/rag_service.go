package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/doclens-ai/doclens/internal/conversation"
	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/port"
)

// User-facing messages for the degraded terminal states. Upstream error
// detail never reaches the caller.
const (
	noResultsMessage = "I couldn't find any relevant information in the documents to answer your question. " +
		"Please try rephrasing your query or check if the relevant documents have been uploaded."

	generationFailedMessage = "I found relevant information in your documents, but encountered an error " +
		"generating the response. Please try again."

	rateLimitedMessage = "I found relevant information in your documents, but the answer service is " +
		"temporarily busy. Please try again in a moment."

	pipelineFailedMessage = "An error occurred while processing your query. Please try again."
)

// RAGConfig controls one query through the pipeline. Immutable within a
// single query execution.
type RAGConfig struct {
	SimilarityThreshold float64
	MaxChunks           int
	MaxContextLength    int
	LLMModel            string
	Temperature         float32
	MaxTokens           int
	IncludeMetadata     bool
}

// Validate rejects out-of-range values before any pipeline stage runs.
func (c RAGConfig) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1], got %g", c.SimilarityThreshold)
	}
	if c.MaxChunks < 1 {
		return fmt.Errorf("max chunks must be >= 1, got %d", c.MaxChunks)
	}
	if c.MaxContextLength < 1 {
		return fmt.Errorf("max context length must be >= 1, got %d", c.MaxContextLength)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be >= 1, got %d", c.MaxTokens)
	}
	return nil
}

// ConfigOverrides are optional per-query replacements for the service
// defaults. Nil fields keep the default.
type ConfigOverrides struct {
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	MaxChunks           *int     `json:"max_chunks"`
	MaxContextLength    *int     `json:"max_context_length"`
	LLMModel            *string  `json:"llm_model"`
	Temperature         *float32 `json:"temperature"`
	MaxTokens           *int     `json:"max_tokens"`
	IncludeMetadata     *bool    `json:"include_metadata"`
}

// QueryRequest carries one query through the orchestrator.
type QueryRequest struct {
	Query       string
	OwnerID     string
	SessionID   string
	DocumentIDs []string
	Overrides   *ConfigOverrides
}

// DocumentCounter supplies the document count used to personalize
// conversational replies.
type DocumentCounter interface {
	CountDocumentsByOwner(ctx context.Context, ownerID string) (int, error)
}

// RAGService is the query orchestrator: classify, then either answer
// conversationally or embed, retrieve, assemble, prompt and generate.
// Safe for concurrent use; queries share only the read-only defaults and the
// injected ports.
type RAGService struct {
	embedder port.EmbeddingProvider
	llm      port.LLMProvider
	searcher port.VectorSearcher
	logs     port.QueryLogStore
	counter  DocumentCounter
	defaults RAGConfig
}

// NewRAGService creates the orchestrator with its collaborators. counter may
// be nil, in which case conversational replies are not personalized.
func NewRAGService(embedder port.EmbeddingProvider, llm port.LLMProvider, searcher port.VectorSearcher, logs port.QueryLogStore, counter DocumentCounter, defaults RAGConfig) (*RAGService, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("rag defaults: %w", err)
	}
	return &RAGService{
		embedder: embedder,
		llm:      llm,
		searcher: searcher,
		logs:     logs,
		counter:  counter,
		defaults: defaults,
	}, nil
}

// Defaults returns the process-wide pipeline configuration.
func (s *RAGService) Defaults() RAGConfig {
	return s.defaults
}

// resolveConfig applies per-query overrides to the defaults and validates
// the result. Invalid overrides fail before any pipeline stage runs.
func (s *RAGService) resolveConfig(o *ConfigOverrides) (RAGConfig, error) {
	cfg := s.defaults
	if o != nil {
		if o.SimilarityThreshold != nil {
			cfg.SimilarityThreshold = *o.SimilarityThreshold
		}
		if o.MaxChunks != nil {
			cfg.MaxChunks = *o.MaxChunks
		}
		if o.MaxContextLength != nil {
			cfg.MaxContextLength = *o.MaxContextLength
		}
		if o.LLMModel != nil {
			cfg.LLMModel = *o.LLMModel
		}
		if o.Temperature != nil {
			cfg.Temperature = *o.Temperature
		}
		if o.MaxTokens != nil {
			cfg.MaxTokens = *o.MaxTokens
		}
		if o.IncludeMetadata != nil {
			cfg.IncludeMetadata = *o.IncludeMetadata
		}
	}
	if err := cfg.Validate(); err != nil {
		return RAGConfig{}, fmt.Errorf("query config: %w", err)
	}
	return cfg, nil
}

// Query runs one request through the pipeline. Only precondition violations
// (empty query, invalid overrides) and embedding failures return an error;
// every other failure mode is absorbed into the response so the caller can
// always distinguish "the pipeline ran" from "the pipeline produced a good
// answer". Each terminal state writes exactly one best-effort log record.
func (s *RAGService) Query(ctx context.Context, req QueryRequest) (*domain.RAGResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, port.ErrEmptyQuery
	}

	cfg, err := s.resolveConfig(req.Overrides)
	if err != nil {
		return nil, err
	}

	totalStart := time.Now()

	// Conversational queries skip embedding, retrieval and generation.
	if reply, ok := conversation.Respond(query, s.documentCount(ctx, req.OwnerID)); ok {
		resp := &domain.RAGResponse{
			Query:            query,
			Answer:           reply,
			SourceChunks:     []domain.SearchResult{},
			LLMModel:         cfg.LLMModel,
			IsConversational: true,
			Timings:          domain.Timings{Total: time.Since(totalStart).Seconds()},
		}
		s.logQuery(ctx, req, cfg, resp)
		return resp, nil
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	searchStart := time.Now()
	results, err := s.searcher.SearchSimilar(ctx, queryVector, port.SearchScope{
		OwnerID:     req.OwnerID,
		DocumentIDs: req.DocumentIDs,
	}, cfg.SimilarityThreshold, cfg.MaxChunks)
	searchTime := time.Since(searchStart).Seconds()
	if err != nil {
		slog.Error("chunk search failed", "error", err, "owner", req.OwnerID)
		resp := &domain.RAGResponse{
			Query:        query,
			Answer:       pipelineFailedMessage,
			SourceChunks: []domain.SearchResult{},
			LLMModel:     cfg.LLMModel,
			Timings:      domain.Timings{Search: searchTime, Total: time.Since(totalStart).Seconds()},
		}
		s.logQuery(ctx, req, cfg, resp)
		return resp, nil
	}

	if len(results) == 0 {
		resp := &domain.RAGResponse{
			Query:        query,
			Answer:       noResultsMessage,
			SourceChunks: []domain.SearchResult{},
			LLMModel:     cfg.LLMModel,
			Timings:      domain.Timings{Search: searchTime, Total: time.Since(totalStart).Seconds()},
		}
		s.logQuery(ctx, req, cfg, resp)
		return resp, nil
	}

	contextText := AssembleContext(results, cfg.MaxContextLength, cfg.IncludeMetadata)
	prompt := BuildPrompt(query, contextText)

	llmStart := time.Now()
	answer, usage, genErr := s.llm.Complete(ctx, port.CompletionRequest{
		Prompt:      prompt,
		Model:       cfg.LLMModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	llmTime := time.Since(llmStart).Seconds()

	if genErr != nil {
		// Retrieval succeeded, so the retrieved evidence is preserved even
		// though generation failed.
		slog.Error("llm generation failed", "error", genErr, "model", cfg.LLMModel)
		answer = generationFailedMessage
		if errors.Is(genErr, port.ErrRateLimited) {
			answer = rateLimitedMessage
		}
		usage = port.CompletionUsage{}
		llmTime = 0
	}

	resp := &domain.RAGResponse{
		Query:            query,
		Answer:           answer,
		SourceChunks:     results,
		TotalChunksFound: len(results),
		LLMModel:         cfg.LLMModel,
		Usage: domain.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			Cost:             usage.Cost,
		},
		Timings: domain.Timings{
			Search: searchTime,
			LLM:    llmTime,
			Total:  time.Since(totalStart).Seconds(),
		},
	}
	s.logQuery(ctx, req, cfg, resp)
	return resp, nil
}

func (s *RAGService) documentCount(ctx context.Context, ownerID string) int {
	if s.counter == nil || ownerID == "" {
		return -1
	}
	count, err := s.counter.CountDocumentsByOwner(ctx, ownerID)
	if err != nil {
		slog.Warn("document count lookup failed", "owner", ownerID, "error", err)
		return -1
	}
	return count
}

// logQuery writes the analytics record for a terminal state. A logging
// failure must never alter or fail the already-computed response.
func (s *RAGService) logQuery(ctx context.Context, req QueryRequest, cfg RAGConfig, resp *domain.RAGResponse) {
	if s.logs == nil {
		return
	}
	log := &domain.QueryLog{
		QueryText:           resp.Query,
		OwnerID:             req.OwnerID,
		SessionID:           req.SessionID,
		ResponseText:        resp.Answer,
		SimilarityThreshold: cfg.SimilarityThreshold,
		ChunksFound:         resp.TotalChunksFound,
		IsConversational:    resp.IsConversational,
		LLMModel:            resp.LLMModel,
		PromptTokens:        resp.Usage.PromptTokens,
		CompletionTokens:    resp.Usage.CompletionTokens,
		TotalCost:           resp.Usage.Cost,
		SearchTime:          resp.Timings.Search,
		LLMTime:             resp.Timings.LLM,
		TotalTime:           resp.Timings.Total,
	}
	if err := s.logs.RecordQuery(ctx, log); err != nil {
		slog.Warn("query log write failed", "error", err)
	}
}

