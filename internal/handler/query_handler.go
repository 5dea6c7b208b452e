package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/doclens-ai/doclens/internal/middleware"
	"github.com/doclens-ai/doclens/internal/port"
	"github.com/doclens-ai/doclens/internal/service"
)

// QueryHandler handles document question-answering endpoints.
type QueryHandler struct {
	ragService *service.RAGService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(ragService *service.RAGService) *QueryHandler {
	return &QueryHandler{ragService: ragService}
}

// Register sets up query routes.
func (h *QueryHandler) Register(router fiber.Router) {
	router.Post("/query", h.Query)
}

// Query answers a question against the caller's documents.
func (h *QueryHandler) Query(c fiber.Ctx) error {
	var body struct {
		Query       string                   `json:"query"`
		SessionID   string                   `json:"session_id"`
		DocumentIDs []string                 `json:"document_ids"`
		Overrides   *service.ConfigOverrides `json:"config"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.ragService.Query(c.Context(), service.QueryRequest{
		Query:       body.Query,
		OwnerID:     middleware.OwnerID(c),
		SessionID:   body.SessionID,
		DocumentIDs: body.DocumentIDs,
		Overrides:   body.Overrides,
	})
	if err != nil {
		if errors.Is(err, port.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query must not be empty"})
		}
		if errors.Is(err, port.ErrEmbeddingFailed) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "embedding service unavailable"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(resp)
}
