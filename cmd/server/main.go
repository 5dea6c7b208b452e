package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/doclens-ai/doclens/internal/adapter/ai"
	"github.com/doclens-ai/doclens/internal/adapter/store"
	"github.com/doclens-ai/doclens/internal/handler"
	"github.com/doclens-ai/doclens/internal/middleware"
	"github.com/doclens-ai/doclens/internal/service"
	"github.com/doclens-ai/doclens/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting DocLens",
		"port", cfg.Port,
		"embed_url", cfg.OllamaEmbedURL,
		"embed_model", cfg.OllamaEmbedModel,
		"llm_model", cfg.OpenRouterModel,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)

	// ── Adapters ─────────────────────────────────────────────────────────
	embedder := ai.NewOllamaEmbedder(ai.OllamaConfig{
		BaseURL:   cfg.OllamaEmbedURL,
		Model:     cfg.OllamaEmbedModel,
		Token:     cfg.OllamaEmbedToken,
		Dimension: cfg.EmbeddingDimension,
	})

	llm, err := ai.NewOpenRouterClient(ai.OpenRouterConfig{
		APIKey:       cfg.OpenRouterAPIKey,
		BaseURL:      cfg.OpenRouterBaseURL,
		DefaultModel: cfg.OpenRouterModel,
		Timeout:      cfg.LLMTimeout,
	})
	if err != nil {
		slog.Error("failed to configure LLM client", "error", err)
		os.Exit(1)
	}

	// ── Services ─────────────────────────────────────────────────────────
	ingestService := service.NewIngestService(pgStore, vectorStore, embedder, service.IngestConfig{
		MaxUploadSizeMB: cfg.MaxUploadSizeMB,
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
	})

	ragService, err := service.NewRAGService(embedder, llm, vectorStore, pgStore, pgStore, service.RAGConfig{
		SimilarityThreshold: cfg.SimilarityThreshold,
		MaxChunks:           cfg.MaxChunks,
		MaxContextLength:    cfg.MaxContextLength,
		LLMModel:            cfg.OpenRouterModel,
		Temperature:         float32(cfg.Temperature),
		MaxTokens:           cfg.MaxTokens,
		IncludeMetadata:     cfg.IncludeMetadata,
	})
	if err != nil {
		slog.Error("invalid pipeline defaults", "error", err)
		os.Exit(1)
	}

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    cfg.MaxUploadSizeMB * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── API Routes ───────────────────────────────────────────────────────
	api := app.Group("/api/v1", middleware.RequireOwner())

	documentHandler := handler.NewDocumentHandler(ingestService)
	documentHandler.Register(api)

	queryHandler := handler.NewQueryHandler(ragService)
	queryHandler.Register(api)

	analyticsHandler := handler.NewAnalyticsHandler(pgStore)
	analyticsHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
