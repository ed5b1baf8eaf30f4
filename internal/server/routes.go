package server

import (
	"askweb/internal/core/ingest"
	"askweb/internal/core/rag"
	"askweb/internal/health"
	"askweb/internal/platform/postgres"
	"askweb/internal/platform/redis"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Ingest   *ingest.Service
	Rag      *rag.Service
	Index    rag.IndexAdmin
	Redis    *redis.Service
	Postgres *postgres.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	// Health endpoints
	healthHandler := health.NewHealthHandler(d.Redis, d.Postgres)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	ingestHandler := ingest.NewHandler(d.Ingest)
	api.Post("/sites", ingestHandler.HandleCreateSite)
	api.Get("/sites/:name", ingestHandler.HandleGetSite)

	ragHandler := rag.NewHandler(d.Rag, d.Index)
	api.Post("/query", ragHandler.HandleQuery)
	api.Get("/index/count", ragHandler.HandleIndexCount)
	api.Delete("/index", ragHandler.HandleIndexReset)

	return healthHandler
}
