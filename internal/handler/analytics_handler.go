package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/doclens-ai/doclens/internal/adapter/store"
	"github.com/doclens-ai/doclens/internal/middleware"
)

// AnalyticsHandler exposes the query log for usage analysis.
type AnalyticsHandler struct {
	store *store.PostgresStore
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(store *store.PostgresStore) *AnalyticsHandler {
	return &AnalyticsHandler{store: store}
}

// Register sets up analytics routes.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	queries := router.Group("/queries")
	queries.Get("/", h.ListQueries)
	queries.Get("/stats", h.Stats)
}

// ListQueries returns the caller's recent query logs.
func (h *AnalyticsHandler) ListQueries(c fiber.Ctx) error {
	limitStr := c.Query("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.store.ListQueryLogs(c.Context(), middleware.OwnerID(c), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list queries"})
	}

	return c.JSON(fiber.Map{
		"queries": logs,
		"count":   len(logs),
	})
}

// Stats returns aggregate query metrics for the caller.
func (h *AnalyticsHandler) Stats(c fiber.Ctx) error {
	stats, err := h.store.GetQueryStats(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	return c.JSON(stats)
}
