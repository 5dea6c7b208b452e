package domain

import "time"

// Usage reports LLM token consumption and the derived cost in USD.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	Cost             float64 `json:"cost"`
}

// Timings holds per-stage durations for a single query, in seconds.
type Timings struct {
	Search float64 `json:"search"`
	LLM    float64 `json:"llm"`
	Total  float64 `json:"total"`
}

// RAGResponse is the complete outcome of one query through the pipeline,
// whether it was answered conversationally, from documents, or degraded.
type RAGResponse struct {
	Query            string         `json:"query"`
	Answer           string         `json:"answer"`
	SourceChunks     []SearchResult `json:"source_chunks"`
	TotalChunksFound int            `json:"total_chunks_found"`
	Timings          Timings        `json:"timings"`
	LLMModel         string         `json:"llm_model"`
	Usage            Usage          `json:"usage"`
	IsConversational bool           `json:"is_conversational"`
}

// QueryLog is the persisted analytics record for one query.
type QueryLog struct {
	ID                  string    `json:"id"                   db:"id"`
	QueryText           string    `json:"query_text"           db:"query_text"`
	OwnerID             string    `json:"owner_id"             db:"owner_id"`
	SessionID           string    `json:"session_id"           db:"session_id"`
	ResponseText        string    `json:"response_text"        db:"response_text"`
	SimilarityThreshold float64   `json:"similarity_threshold" db:"similarity_threshold"`
	ChunksFound         int       `json:"chunks_found"         db:"chunks_found"`
	IsConversational    bool      `json:"is_conversational"    db:"is_conversational"`
	LLMModel            string    `json:"llm_model"            db:"llm_model"`
	PromptTokens        int       `json:"prompt_tokens"        db:"prompt_tokens"`
	CompletionTokens    int       `json:"completion_tokens"    db:"completion_tokens"`
	TotalCost           float64   `json:"total_cost"           db:"total_cost"`
	SearchTime          float64   `json:"search_time"          db:"search_time"`
	LLMTime             float64   `json:"llm_time"             db:"llm_time"`
	TotalTime           float64   `json:"total_time"           db:"total_time"`
	CreatedAt           time.Time `json:"created_at"           db:"created_at"`
}
