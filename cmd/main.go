package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"askweb/internal/config"
	"askweb/internal/core/chunker"
	"askweb/internal/core/crawl"
	"askweb/internal/core/index"
	"askweb/internal/core/ingest"
	"askweb/internal/core/rag"
	"askweb/internal/core/sitemap"
	"askweb/internal/logger"
	"askweb/internal/platform/eino"
	pg "askweb/internal/platform/postgres"
	rds "askweb/internal/platform/redis"
	tasks "askweb/internal/platform/tasks"
	"askweb/internal/server"
	"askweb/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[askweb] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Postgres pool backing the vector collection
	ctx := context.Background()
	pgSvc, err := pg.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pgSvc.Close()

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})

	// Eino (LLM) answer synthesizer
	einoSvc, err := eino.NewService(eino.Config{
		Provider: "gemini",
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.DefaultLLMModel,
	})
	if err != nil {
		log.Fatalf("failed to initialize Eino service: %v", err)
	}

	// Core services
	indexSvc, err := index.NewService(ctx, pgSvc, cfg.EmbeddingDim, cfg.RetrievalTopK)
	if err != nil {
		log.Fatalf("failed to initialize vector index: %v", err)
	}
	sitemapSvc := sitemap.NewService()
	crawlSvc := crawl.NewService()
	chunkSvc := chunker.NewService(cfg.ChunkSize, cfg.ChunkOverlap)
	ragSvc := rag.NewService(sitemapSvc, crawlSvc, chunkSvc, indexSvc, einoSvc, cfg.RetrievalTopK, cfg.Temperature)
	ingestSvc := ingest.NewService(redisSvc, taskClient, ragSvc, cfg.TaskMaxRetries)

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeIngest, ingestSvc.HandleIngestTask)

	// Start worker
	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "Askweb Engine",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Ingest:   ingestSvc,
		Rag:      ragSvc,
		Index:    indexSvc,
		Redis:    redisSvc,
		Postgres: pgSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	// Mark application as ready after all services are initialized
	go func() {
		time.Sleep(2 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
