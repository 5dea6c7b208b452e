package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// --- Documents ---

const documentColumns = `id, title, file_name, file_size, file_type, content, content_hash,
	chunk_count, status, COALESCE(processing_error, ''), owner_id, uploaded_at, processed_at`

// CreateDocument inserts a new document record.
func (s *PostgresStore) CreateDocument(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	query := `INSERT INTO documents (id, title, file_name, file_size, file_type, content, content_hash, chunk_count, status, owner_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING ` + documentColumns

	var doc domain.Document
	err := s.db.QueryRowContext(ctx, query,
		d.ID, d.Title, d.FileName, d.FileSize, d.FileType, d.Content, d.ContentHash, d.ChunkCount, d.Status, d.OwnerID,
	).Scan(
		&doc.ID, &doc.Title, &doc.FileName, &doc.FileSize, &doc.FileType, &doc.Content,
		&doc.ContentHash, &doc.ChunkCount, &doc.Status, &doc.ProcessingError,
		&doc.OwnerID, &doc.UploadedAt, &doc.ProcessedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return &doc, nil
}

// GetDocumentByID returns a document by its ID.
func (s *PostgresStore) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	var doc domain.Document
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Title, &doc.FileName, &doc.FileSize, &doc.FileType, &doc.Content,
		&doc.ContentHash, &doc.ChunkCount, &doc.Status, &doc.ProcessingError,
		&doc.OwnerID, &doc.UploadedAt, &doc.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// GetDocumentByContentHash returns the document with the given content hash,
// or port.ErrDocumentNotFound. Used for upload deduplication.
func (s *PostgresStore) GetDocumentByContentHash(ctx context.Context, hash string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE content_hash = $1`

	var doc domain.Document
	err := s.db.QueryRowContext(ctx, query, hash).Scan(
		&doc.ID, &doc.Title, &doc.FileName, &doc.FileSize, &doc.FileType, &doc.Content,
		&doc.ContentHash, &doc.ChunkCount, &doc.Status, &doc.ProcessingError,
		&doc.OwnerID, &doc.UploadedAt, &doc.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document by hash: %w", err)
	}
	return &doc, nil
}

// ListDocumentsByOwner returns all documents for an owner, newest first.
// Content is not included in listings.
func (s *PostgresStore) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	query := `SELECT id, title, file_name, file_size, file_type, content_hash, chunk_count,
	                 status, COALESCE(processing_error, ''), owner_id, uploaded_at, processed_at
	          FROM documents WHERE owner_id = $1 ORDER BY uploaded_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(
			&d.ID, &d.Title, &d.FileName, &d.FileSize, &d.FileType, &d.ContentHash,
			&d.ChunkCount, &d.Status, &d.ProcessingError, &d.OwnerID, &d.UploadedAt, &d.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CountDocumentsByOwner returns the number of documents an owner has.
func (s *PostgresStore) CountDocumentsByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// UpdateDocumentStatus updates the processing status of a document.
func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id, status string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE documents SET status = $1 WHERE id = $2`, status, id)
	return err
}

// MarkDocumentProcessed records a successful processing run.
func (s *PostgresStore) MarkDocumentProcessed(ctx context.Context, id string, chunkCount int) error {
	query := `UPDATE documents SET status = $1, chunk_count = $2, processing_error = NULL, processed_at = NOW() WHERE id = $3`
	_, err := s.db.ExecContext(ctx, query, domain.StatusProcessed, chunkCount, id)
	return err
}

// MarkDocumentFailed records a failed processing run with its error message.
func (s *PostgresStore) MarkDocumentFailed(ctx context.Context, id, processingError string) error {
	query := `UPDATE documents SET status = $1, processing_error = $2 WHERE id = $3`
	_, err := s.db.ExecContext(ctx, query, domain.StatusFailed, processingError, id)
	return err
}

// DeleteDocument removes a document; chunks and embeddings cascade.
func (s *PostgresStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return port.ErrDocumentNotFound
	}
	return nil
}

// --- Query logs ---

// RecordQuery implements port.QueryLogStore.
func (s *PostgresStore) RecordQuery(ctx context.Context, l *domain.QueryLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `INSERT INTO query_logs (id, query_text, owner_id, session_id, response_text,
	              similarity_threshold, chunks_found, is_conversational, llm_model,
	              prompt_tokens, completion_tokens, total_cost, search_time, llm_time, total_time)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.db.ExecContext(ctx, query,
		l.ID, l.QueryText, l.OwnerID, l.SessionID, l.ResponseText,
		l.SimilarityThreshold, l.ChunksFound, l.IsConversational, l.LLMModel,
		l.PromptTokens, l.CompletionTokens, l.TotalCost, l.SearchTime, l.LLMTime, l.TotalTime,
	)
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

// ListQueryLogs returns recent query logs, optionally scoped to an owner.
func (s *PostgresStore) ListQueryLogs(ctx context.Context, ownerID string, limit int) ([]domain.QueryLog, error) {
	query := `SELECT id, query_text, owner_id, session_id, response_text,
	                 similarity_threshold, chunks_found, is_conversational, llm_model,
	                 prompt_tokens, completion_tokens, total_cost, search_time, llm_time, total_time, created_at
	          FROM query_logs`
	args := []interface{}{}
	argIdx := 1

	if ownerID != "" {
		query += fmt.Sprintf(" WHERE owner_id = $%d", argIdx)
		args = append(args, ownerID)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.QueryLog
	for rows.Next() {
		var l domain.QueryLog
		if err := rows.Scan(
			&l.ID, &l.QueryText, &l.OwnerID, &l.SessionID, &l.ResponseText,
			&l.SimilarityThreshold, &l.ChunksFound, &l.IsConversational, &l.LLMModel,
			&l.PromptTokens, &l.CompletionTokens, &l.TotalCost, &l.SearchTime, &l.LLMTime, &l.TotalTime, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan query log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// QueryStats summarizes query activity for the analytics dashboard.
type QueryStats struct {
	TotalQueries       int     `json:"total_queries"`
	ConversationalHits int     `json:"conversational_hits"`
	AvgSearchTime      float64 `json:"avg_search_time"`
	AvgLLMTime         float64 `json:"avg_llm_time"`
	AvgTotalTime       float64 `json:"avg_total_time"`
	TotalCost          float64 `json:"total_cost"`
}

// GetQueryStats aggregates query log metrics, optionally scoped to an owner.
func (s *PostgresStore) GetQueryStats(ctx context.Context, ownerID string) (*QueryStats, error) {
	query := `SELECT COUNT(*),
	                 COUNT(*) FILTER (WHERE is_conversational),
	                 COALESCE(AVG(search_time), 0),
	                 COALESCE(AVG(llm_time), 0),
	                 COALESCE(AVG(total_time), 0),
	                 COALESCE(SUM(total_cost), 0)
	          FROM query_logs`
	args := []interface{}{}
	if ownerID != "" {
		query += " WHERE owner_id = $1"
		args = append(args, ownerID)
	}

	var stats QueryStats
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalQueries, &stats.ConversationalHits,
		&stats.AvgSearchTime, &stats.AvgLLMTime, &stats.AvgTotalTime, &stats.TotalCost,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &stats, nil
}

// --- Audit logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(ownerID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (owner_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(context.Background(), query,
		ownerID, action, resource, resourceID, details, ip, userAgent,
	)
	return err
}
