package handler

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/doclens-ai/doclens/internal/middleware"
	"github.com/doclens-ai/doclens/internal/port"
	"github.com/doclens-ai/doclens/internal/service"
)

// DocumentHandler handles document upload and lifecycle endpoints.
type DocumentHandler struct {
	ingest *service.IngestService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(ingest *service.IngestService) *DocumentHandler {
	return &DocumentHandler{ingest: ingest}
}

// Register sets up document routes.
func (h *DocumentHandler) Register(router fiber.Router) {
	docs := router.Group("/documents")
	docs.Post("/", h.Upload)
	docs.Get("/", h.List)
	docs.Get("/:id", h.Get)
	docs.Delete("/:id", h.Delete)
	docs.Post("/:id/reprocess", h.Reprocess)
}

// Upload accepts a multipart file and runs it through the ingest pipeline.
func (h *DocumentHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file field"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
	}

	doc, err := h.ingest.Upload(c.Context(), service.UploadInput{
		Title:    c.FormValue("title"),
		FileName: fileHeader.Filename,
		FileType: strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."),
		Data:     data,
		OwnerID:  middleware.OwnerID(c),
	})
	if err != nil {
		if errors.Is(err, port.ErrDuplicateContent) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":    "duplicate content",
				"document": doc,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// List returns the caller's documents.
func (h *DocumentHandler) List(c fiber.Ctx) error {
	docs, err := h.ingest.List(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list documents"})
	}
	return c.JSON(fiber.Map{"documents": docs, "count": len(docs)})
}

// Get returns a single document by ID.
func (h *DocumentHandler) Get(c fiber.Ctx) error {
	doc, err := h.ingest.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrDocumentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load document"})
	}
	return c.JSON(doc)
}

// Delete removes a document along with its chunks and embeddings.
func (h *DocumentHandler) Delete(c fiber.Ctx) error {
	if err := h.ingest.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, port.ErrDocumentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete document"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Reprocess regenerates a document's chunks and embeddings.
func (h *DocumentHandler) Reprocess(c fiber.Ctx) error {
	doc, err := h.ingest.Reprocess(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrDocumentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reprocess document"})
	}
	return c.JSON(doc)
}
