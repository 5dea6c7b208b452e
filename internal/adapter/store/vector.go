package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/port"
)

// overfetchFactor controls how many extra candidates are pulled from the
// database before rank truncation, leaving room for downstream filtering
// without a second round trip.
const overfetchFactor = 2

// VectorStore handles pgvector-specific operations for chunk embeddings.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// StoreChunks persists a document's chunks with their embeddings in a single
// transaction. Chunk and vector counts must match; chunks are regenerated
// wholesale, so callers delete existing rows first when reprocessing.
func (v *VectorStore) StoreChunks(ctx context.Context, documentID string, chunks []domain.Chunk, vectors [][]float32, modelName string) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("store chunks: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	chunkStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_chunks (id, document_id, content, chunk_index, start_offset, end_offset, char_count, word_count, token_estimate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer chunkStmt.Close()

	embedStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (id, chunk_id, vector, model_name, dimensions)
		 VALUES ($1, $2, $3::vector, $4, $5)`)
	if err != nil {
		return fmt.Errorf("prepare embedding insert: %w", err)
	}
	defer embedStmt.Close()

	for i := range chunks {
		if len(vectors[i]) != v.dimension {
			return fmt.Errorf("chunk %d: vector dimension %d, want %d", i, len(vectors[i]), v.dimension)
		}

		chunkID := chunks[i].ID
		if chunkID == "" {
			chunkID = uuid.NewString()
		}
		if _, err := chunkStmt.ExecContext(ctx,
			chunkID, documentID, chunks[i].Content, chunks[i].Index,
			chunks[i].StartOffset, chunks[i].EndOffset,
			chunks[i].CharCount, chunks[i].WordCount, chunks[i].TokenEstimate,
		); err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}

		emb := domain.Embedding{
			ID:         uuid.NewString(),
			ChunkID:    chunkID,
			Vector:     vectors[i],
			ModelName:  modelName,
			Dimensions: v.dimension,
		}
		if _, err := embedStmt.ExecContext(ctx,
			emb.ID, emb.ChunkID, vectorToString(emb.Vector), emb.ModelName, emb.Dimensions,
		); err != nil {
			return fmt.Errorf("insert embedding %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// DeleteChunksByDocument removes a document's chunks; embeddings cascade.
func (v *VectorStore) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	_, err := v.store.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	return err
}

// SearchSimilar implements port.VectorSearcher with a cosine similarity
// search over stored embeddings. Only chunks with a stored embedding are
// candidates (the join enforces this). Candidates with similarity below
// threshold are excluded in SQL as distance < 1-threshold; results come back
// ordered ascending by distance, so rank assignment preserves Postgres's
// stable ordering for ties.
func (v *VectorStore) SearchSimilar(ctx context.Context, queryVector []float32, scope port.SearchScope, threshold float64, maxChunks int) ([]domain.SearchResult, error) {
	if maxChunks < 1 {
		return nil, fmt.Errorf("search similar: maxChunks must be >= 1, got %d", maxChunks)
	}

	vectorStr := vectorToString(queryVector)
	distanceThreshold := 1.0 - threshold

	query := `SELECT c.id, c.document_id, c.content, c.chunk_index, c.start_offset, c.end_offset,
	                 c.char_count, c.word_count, c.token_estimate, c.created_at, d.title,
	                 1 - (e.vector <=> $1::vector) AS similarity
	          FROM document_chunks c
	          JOIN embeddings e ON e.chunk_id = c.id
	          JOIN documents d ON d.id = c.document_id
	          WHERE (e.vector <=> $1::vector) < $2`
	args := []interface{}{vectorStr, distanceThreshold}
	argIdx := 3

	if scope.OwnerID != "" {
		query += fmt.Sprintf(" AND d.owner_id = $%d", argIdx)
		args = append(args, scope.OwnerID)
		argIdx++
	}
	if len(scope.DocumentIDs) > 0 {
		query += fmt.Sprintf(" AND c.document_id = ANY($%d)", argIdx)
		args = append(args, pq.Array(scope.DocumentIDs))
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY e.vector <=> $1::vector LIMIT $%d", argIdx)
	args = append(args, maxChunks*overfetchFactor)

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		if err := rows.Scan(
			&r.Chunk.ID, &r.Chunk.DocumentID, &r.Chunk.Content, &r.Chunk.Index,
			&r.Chunk.StartOffset, &r.Chunk.EndOffset,
			&r.Chunk.CharCount, &r.Chunk.WordCount, &r.Chunk.TokenEstimate,
			&r.Chunk.CreatedAt, &r.DocumentTitle, &r.SimilarityScore,
		); err != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", err)
		}
		r.Rank = len(results) + 1
		results = append(results, r)
		if len(results) >= maxChunks {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	return results, nil
}

// vectorToString converts a float32 slice to pgvector text format: [0.1,0.2].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
