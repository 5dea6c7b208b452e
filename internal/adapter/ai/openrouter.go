package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/doclens-ai/doclens/internal/port"
)

// Cost per 1k tokens used for usage accounting. Placeholder rates; real
// per-model pricing comes from the OpenRouter dashboard.
const (
	costPer1kPromptTokens     = 0.003
	costPer1kCompletionTokens = 0.015
)

// OpenRouterConfig holds configuration for the OpenRouter completion backend.
type OpenRouterConfig struct {
	APIKey       string
	BaseURL      string        // defaults to https://openrouter.ai/api/v1
	DefaultModel string        // e.g. google/gemini-2.5-flash
	Timeout      time.Duration // per-request timeout at the network boundary
}

// OpenRouterClient implements port.LLMProvider against OpenRouter's
// OpenAI-compatible API. Safe for concurrent use.
type OpenRouterClient struct {
	client       *openai.Client
	defaultModel string
	timeout      time.Duration
}

// NewOpenRouterClient creates a new OpenRouter-backed LLM provider.
func NewOpenRouterClient(cfg OpenRouterConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "google/gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	return &OpenRouterClient{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: cfg.DefaultModel,
		timeout:      cfg.Timeout,
	}, nil
}

// ModelName returns the default completion model identifier.
func (c *OpenRouterClient) ModelName() string {
	return c.defaultModel
}

// Complete sends a prompt and returns the generated text with token usage.
// Authentication, rate-limit and timeout failures are classified into the
// port sentinel errors so callers can distinguish them with errors.Is.
func (c *OpenRouterClient) Complete(ctx context.Context, req port.CompletionRequest) (string, port.CompletionUsage, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", port.CompletionUsage{}, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", port.CompletionUsage{}, fmt.Errorf("openrouter: empty response for model %s", model)
	}

	usage := port.CompletionUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	usage.Cost = float64(usage.PromptTokens)/1000*costPer1kPromptTokens +
		float64(usage.CompletionTokens)/1000*costPer1kCompletionTokens

	return resp.Choices[0].Message.Content, usage, nil
}

// classifyError maps upstream failures onto the port sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", port.ErrLLMTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", port.ErrAuthFailed, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", port.ErrRateLimited, err)
		}
	}

	return fmt.Errorf("openrouter completion: %w", err)
}
