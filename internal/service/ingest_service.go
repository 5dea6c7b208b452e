package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/doclens-ai/doclens/internal/adapter/extract"
	"github.com/doclens-ai/doclens/internal/chunker"
	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/doclens-ai/doclens/internal/port"
)

// DocumentStore is the persistence surface the ingest pipeline needs.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d *domain.Document) (*domain.Document, error)
	GetDocumentByID(ctx context.Context, id string) (*domain.Document, error)
	GetDocumentByContentHash(ctx context.Context, hash string) (*domain.Document, error)
	ListDocumentsByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
	UpdateDocumentStatus(ctx context.Context, id, status string) error
	MarkDocumentProcessed(ctx context.Context, id string, chunkCount int) error
	MarkDocumentFailed(ctx context.Context, id, processingError string) error
	DeleteDocument(ctx context.Context, id string) error
}

// ChunkStore persists chunk rows together with their embeddings.
type ChunkStore interface {
	StoreChunks(ctx context.Context, documentID string, chunks []domain.Chunk, vectors [][]float32, modelName string) error
	DeleteChunksByDocument(ctx context.Context, documentID string) error
}

// IngestConfig bounds the upload pipeline.
type IngestConfig struct {
	MaxUploadSizeMB int
	ChunkSize       int
	ChunkOverlap    int
}

func (c IngestConfig) maxUploadBytes() int {
	return c.MaxUploadSizeMB * 1024 * 1024
}

// UploadInput is one file submitted for ingestion.
type UploadInput struct {
	Title    string
	FileName string
	FileType string
	Data     []byte
	OwnerID  string
}

// IngestService turns uploaded files into searchable chunks: extract text,
// dedupe by content hash, split, embed and store.
type IngestService struct {
	docs     DocumentStore
	chunks   ChunkStore
	embedder port.EmbeddingProvider
	cfg      IngestConfig
}

func NewIngestService(docs DocumentStore, chunks ChunkStore, embedder port.EmbeddingProvider, cfg IngestConfig) *IngestService {
	return &IngestService{docs: docs, chunks: chunks, embedder: embedder, cfg: cfg}
}

// Upload validates, extracts and persists a document, then runs the chunking
// and embedding pipeline. The document row is created before processing so a
// mid-pipeline failure leaves a visible failed document rather than nothing.
func (s *IngestService) Upload(ctx context.Context, in UploadInput) (*domain.Document, error) {
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	if len(in.Data) > s.cfg.maxUploadBytes() {
		return nil, fmt.Errorf("file exceeds %dMB limit", s.cfg.MaxUploadSizeMB)
	}
	fileType := strings.ToLower(strings.TrimPrefix(in.FileType, "."))
	if !extract.Supported(fileType) {
		return nil, fmt.Errorf("unsupported file type %q", in.FileType)
	}

	content, err := extract.Text(in.Data, fileType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("no extractable text in %s", in.FileName)
	}

	hash := contentHash(content)
	if existing, err := s.docs.GetDocumentByContentHash(ctx, hash); err == nil {
		return existing, fmt.Errorf("%w: matches document %s", port.ErrDuplicateContent, existing.ID)
	} else if !errors.Is(err, port.ErrDocumentNotFound) {
		return nil, fmt.Errorf("dedupe lookup: %w", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.FileName
	}

	doc, err := s.docs.CreateDocument(ctx, &domain.Document{
		Title:       title,
		FileName:    in.FileName,
		FileSize:    int64(len(in.Data)),
		FileType:    fileType,
		Content:     content,
		ContentHash: hash,
		Status:      domain.StatusUploaded,
		OwnerID:     in.OwnerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if err := s.docs.UpdateDocumentStatus(ctx, doc.ID, domain.StatusProcessing); err != nil {
		slog.Warn("mark document processing", "document", doc.ID, "error", err)
	}

	if err := s.process(ctx, doc); err != nil {
		slog.Error("document processing failed", "document", doc.ID, "error", err)
		if markErr := s.docs.MarkDocumentFailed(ctx, doc.ID, err.Error()); markErr != nil {
			slog.Warn("mark document failed", "document", doc.ID, "error", markErr)
		}
		doc.Status = domain.StatusFailed
		doc.ProcessingError = err.Error()
		return doc, nil
	}

	doc.Status = domain.StatusProcessed
	return doc, nil
}

// Reprocess drops a document's chunks and runs the pipeline again, picking
// up any change in chunking parameters or embedding model.
func (s *IngestService) Reprocess(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.docs.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.docs.UpdateDocumentStatus(ctx, doc.ID, domain.StatusProcessing); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	if err := s.chunks.DeleteChunksByDocument(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("clear chunks: %w", err)
	}

	if err := s.process(ctx, doc); err != nil {
		slog.Error("document reprocessing failed", "document", doc.ID, "error", err)
		if markErr := s.docs.MarkDocumentFailed(ctx, doc.ID, err.Error()); markErr != nil {
			slog.Warn("mark document failed", "document", doc.ID, "error", markErr)
		}
		doc.Status = domain.StatusFailed
		doc.ProcessingError = err.Error()
		return doc, nil
	}

	doc.Status = domain.StatusProcessed
	doc.ProcessingError = ""
	return doc, nil
}

// Delete removes a document and, through the schema's cascade, its chunks
// and embeddings.
func (s *IngestService) Delete(ctx context.Context, documentID string) error {
	return s.docs.DeleteDocument(ctx, documentID)
}

func (s *IngestService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docs.GetDocumentByID(ctx, documentID)
}

func (s *IngestService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	return s.docs.ListDocumentsByOwner(ctx, ownerID)
}

func (s *IngestService) process(ctx context.Context, doc *domain.Document) error {
	chunks := chunker.Split(doc.Content, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return fmt.Errorf("chunking produced no chunks")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.chunks.StoreChunks(ctx, doc.ID, chunks, vectors, s.embedder.ModelName()); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	if err := s.docs.MarkDocumentProcessed(ctx, doc.ID, len(chunks)); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	doc.ChunkCount = len(chunks)
	return nil
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
