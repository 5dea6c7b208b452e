package port

import (
	"context"

	"github.com/doclens-ai/doclens/internal/domain"
)

// SearchScope narrows a similarity search. Zero value means no filtering:
// the search spans every embedded chunk regardless of owner. Callers needing
// isolation must set OwnerID explicitly.
type SearchScope struct {
	OwnerID     string
	DocumentIDs []string
}

// VectorSearcher returns chunks ranked by similarity to a query vector.
// Results satisfy: at most maxChunks entries, each with similarity >=
// threshold, sorted by descending similarity, rank assigned from 1 in that
// order. Chunks without a stored embedding are never candidates.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, queryVector []float32, scope SearchScope, threshold float64, maxChunks int) ([]domain.SearchResult, error)
}

// QueryLogStore persists query analytics records. Callers treat writes as
// fire-and-forget: a failed write must never fail the query that produced it.
type QueryLogStore interface {
	RecordQuery(ctx context.Context, log *domain.QueryLog) error
}
