package domain

import "time"

// Document statuses as a document moves through the ingest pipeline.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Document is an uploaded file with its extracted text content.
type Document struct {
	ID              string     `json:"id"               db:"id"`
	Title           string     `json:"title"            db:"title"`
	FileName        string     `json:"file_name"        db:"file_name"`
	FileSize        int64      `json:"file_size"        db:"file_size"`
	FileType        string     `json:"file_type"        db:"file_type"`
	Content         string     `json:"-"                db:"content"`
	ContentHash     string     `json:"content_hash"     db:"content_hash"`
	ChunkCount      int        `json:"chunk_count"      db:"chunk_count"`
	Status          string     `json:"status"           db:"status"`
	ProcessingError string     `json:"processing_error,omitempty" db:"processing_error"`
	OwnerID         string     `json:"owner_id"         db:"owner_id"`
	UploadedAt      time.Time  `json:"uploaded_at"      db:"uploaded_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty" db:"processed_at"`
}

// Chunk is a contiguous (possibly overlapping) span of a document's text,
// the unit of embedding and retrieval. Chunks are regenerated wholesale when
// a document is reprocessed, never patched in place.
type Chunk struct {
	ID            string    `json:"id"             db:"id"`
	DocumentID    string    `json:"document_id"    db:"document_id"`
	Content       string    `json:"content"        db:"content"`
	Index         int       `json:"chunk_index"    db:"chunk_index"`
	StartOffset   int       `json:"start_offset"   db:"start_offset"`
	EndOffset     int       `json:"end_offset"     db:"end_offset"`
	CharCount     int       `json:"char_count"     db:"char_count"`
	WordCount     int       `json:"word_count"     db:"word_count"`
	TokenEstimate int       `json:"token_estimate" db:"token_estimate"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}
