package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/port"
)

// setupMockDB creates a mock database wrapped in the store types.
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock, &PostgresStore{db: db}
}

func searchColumns() []string {
	return []string{
		"id", "document_id", "content", "chunk_index", "start_offset", "end_offset",
		"char_count", "word_count", "token_estimate", "created_at", "title", "similarity",
	}
}

func TestVectorStore_SearchSimilar_RanksAndTruncates(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()
	vs := NewVectorStore(pg, 3)

	now := time.Now()
	rows := sqlmock.NewRows(searchColumns()).
		AddRow("c1", "d1", "first chunk", 0, 0, 11, 11, 2, 2, now, "Report", 0.95).
		AddRow("c2", "d1", "second chunk", 1, 11, 23, 12, 2, 3, now, "Report", 0.88).
		AddRow("c3", "d2", "third chunk", 0, 0, 11, 11, 2, 2, now, "Notes", 0.81)

	mock.ExpectQuery("SELECT (.+) FROM document_chunks").
		WillReturnRows(rows)

	results, err := vs.SearchSimilar(context.Background(), []float32{1, 0, 0}, port.SearchScope{}, 0.7, 2)
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (truncated to maxChunks)", len(results))
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("result %d: Rank = %d, want %d", i, r.Rank, i+1)
		}
	}
	if results[0].SimilarityScore < results[1].SimilarityScore {
		t.Error("results not sorted by descending similarity")
	}
	if results[0].Chunk.ID != "c1" || results[1].Chunk.ID != "c2" {
		t.Errorf("unexpected chunk order: %s, %s", results[0].Chunk.ID, results[1].Chunk.ID)
	}
	if results[0].DocumentTitle != "Report" {
		t.Errorf("DocumentTitle = %q, want %q", results[0].DocumentTitle, "Report")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVectorStore_SearchSimilar_DistanceThresholdArg(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()
	vs := NewVectorStore(pg, 2)

	// similarity threshold 0.7 becomes distance threshold 1-0.7 in SQL; the
	// over-fetch limit is 2x maxChunks.
	threshold := 0.7
	mock.ExpectQuery("SELECT (.+) FROM document_chunks").
		WithArgs("[1,0]", 1.0-threshold, 10).
		WillReturnRows(sqlmock.NewRows(searchColumns()))

	results, err := vs.SearchSimilar(context.Background(), []float32{1, 0}, port.SearchScope{}, threshold, 5)
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVectorStore_SearchSimilar_ScopeFilters(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()
	vs := NewVectorStore(pg, 2)

	mock.ExpectQuery("SELECT (.+) FROM document_chunks(.+)owner_id(.+)ANY").
		WillReturnRows(sqlmock.NewRows(searchColumns()))

	scope := port.SearchScope{OwnerID: "user-1", DocumentIDs: []string{"d1", "d2"}}
	if _, err := vs.SearchSimilar(context.Background(), []float32{0, 1}, scope, 0.5, 3); err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVectorStore_SearchSimilar_InvalidMaxChunks(t *testing.T) {
	db, _, pg := setupMockDB(t)
	defer db.Close()
	vs := NewVectorStore(pg, 2)

	if _, err := vs.SearchSimilar(context.Background(), []float32{1}, port.SearchScope{}, 0.7, 0); err == nil {
		t.Error("expected error for maxChunks = 0")
	}
}

func TestVectorStore_StoreChunks(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()
	vs := NewVectorStore(pg, 2)

	chunks := []domain.Chunk{
		{ID: "c1", Content: "alpha beta", Index: 0, StartOffset: 0, EndOffset: 10, CharCount: 10, WordCount: 2},
	}
	vectors := [][]float32{{0.5, 0.5}}

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO document_chunks")
	mock.ExpectPrepare("INSERT INTO embeddings")
	mock.ExpectExec("INSERT INTO document_chunks").
		WithArgs("c1", "d1", "alpha beta", 0, 0, 10, 10, 2, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO embeddings").
		WithArgs(sqlmock.AnyArg(), "c1", "[0.5,0.5]", "bge-m3", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := vs.StoreChunks(context.Background(), "d1", chunks, vectors, "bge-m3"); err != nil {
		t.Fatalf("StoreChunks: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVectorStore_StoreChunks_Mismatch(t *testing.T) {
	db, _, pg := setupMockDB(t)
	defer db.Close()
	vs := NewVectorStore(pg, 2)

	err := vs.StoreChunks(context.Background(), "d1", []domain.Chunk{{ID: "c1"}}, nil, "bge-m3")
	if err == nil {
		t.Error("expected error for chunk/vector count mismatch")
	}
}

func TestVectorStore_StoreChunks_DimensionMismatch(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()
	vs := NewVectorStore(pg, 4)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO document_chunks")
	mock.ExpectPrepare("INSERT INTO embeddings")
	mock.ExpectRollback()

	err := vs.StoreChunks(context.Background(), "d1",
		[]domain.Chunk{{ID: "c1", Content: "x"}}, [][]float32{{1, 2}}, "bge-m3")
	if err == nil {
		t.Error("expected error for vector dimension mismatch")
	}
}

func TestPostgresStore_RecordQuery(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()

	log := &domain.QueryLog{
		QueryText:           "what is the policy",
		OwnerID:             "user-1",
		ResponseText:        "the policy is...",
		SimilarityThreshold: 0.7,
		ChunksFound:         2,
		LLMModel:            "google/gemini-2.5-flash",
	}

	mock.ExpectExec("INSERT INTO query_logs").
		WithArgs(sqlmock.AnyArg(), "what is the policy", "user-1", "", "the policy is...",
			0.7, 2, false, "google/gemini-2.5-flash", 0, 0, float64(0), float64(0), float64(0), float64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := pg.RecordQuery(context.Background(), log); err != nil {
		t.Fatalf("RecordQuery: %v", err)
	}
	if log.ID == "" {
		t.Error("RecordQuery did not assign an ID")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_DeleteDocument_NotFound(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := pg.DeleteDocument(context.Background(), "missing")
	if !errors.Is(err, port.ErrDocumentNotFound) {
		t.Errorf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestPostgresStore_GetDocumentByContentHash_NotFound(t *testing.T) {
	db, mock, pg := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE content_hash").
		WithArgs("deadbeef").
		WillReturnError(sql.ErrNoRows)

	_, err := pg.GetDocumentByContentHash(context.Background(), "deadbeef")
	if !errors.Is(err, port.ErrDocumentNotFound) {
		t.Errorf("err = %v, want ErrDocumentNotFound", err)
	}
}
