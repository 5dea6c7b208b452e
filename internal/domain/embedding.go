package domain

import "time"

// Embedding is the stored vector for a single chunk. A chunk owns at most one
// current embedding; reprocessing a document recomputes them wholesale.
type Embedding struct {
	ID         string    `json:"id"         db:"id"`
	ChunkID    string    `json:"chunk_id"   db:"chunk_id"`
	Vector     []float32 `json:"-"          db:"vector"`
	ModelName  string    `json:"model_name" db:"model_name"`
	Dimensions int       `json:"dimensions" db:"dimensions"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SearchResult is a retrieved chunk with its similarity score and 1-based
// rank. Produced fresh per query, never persisted.
type SearchResult struct {
	Chunk           Chunk   `json:"chunk"`
	DocumentTitle   string  `json:"document_title"`
	SimilarityScore float64 `json:"similarity_score"`
	Rank            int     `json:"rank"`
}
