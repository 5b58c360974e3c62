package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/futureme-labs/futureme-core/internal/adapters/driven/ai"
	"github.com/futureme-labs/futureme-core/internal/adapters/driven/github"
	"github.com/futureme-labs/futureme-core/internal/adapters/driven/memoryvec"
	"github.com/futureme-labs/futureme-core/internal/adapters/driven/memstore"
	"github.com/futureme-labs/futureme-core/internal/adapters/driven/redisstore"
	"github.com/futureme-labs/futureme-core/internal/adapters/driven/redisvec"
	httpadapter "github.com/futureme-labs/futureme-core/internal/adapters/driving/http"
	"github.com/futureme-labs/futureme-core/internal/config"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
	"github.com/futureme-labs/futureme-core/internal/core/services"
	"github.com/futureme-labs/futureme-core/internal/runtime"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GitHub.Username == "" {
		log.Fatal("GitHub username is required (github.username or GITHUB_USERNAME)")
	}
	if cfg.EmbeddingAPIKey() == "" {
		log.Fatalf("Embedding API key is required (%s)", cfg.Embedding.APIKeyEnv)
	}
	if cfg.GenerationAPIKey() == "" {
		log.Fatalf("Generation API key is required (%s)", cfg.Generation.APIKeyEnv)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		logger.Info("redis connected", "addr", cfg.Redis.Addr)
	}

	// ===== Driven adapters =====
	embedder, err := ai.NewOpenAIEmbedding(cfg.EmbeddingAPIKey(), cfg.Embedding.Model, cfg.Embedding.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	defer embedder.Close()

	generator, err := ai.NewGroqLLM(cfg.GenerationAPIKey(), cfg.Generation.Model, cfg.Generation.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create generation service: %v", err)
	}
	defer generator.Close()

	source, err := github.NewSource(github.NewClient(cfg.GitHubToken(), cfg.GitHub.BaseURL), cfg.GitHub.Username)
	if err != nil {
		log.Fatalf("Failed to create history source: %v", err)
	}

	// ===== Stores (Redis if available, otherwise in-memory) =====
	var (
		index       driven.VectorIndex
		sessions    driven.SessionStore
		turnLock    driven.TurnLock
		healthCheck httpadapter.Pinger
	)
	if redisClient != nil {
		index = redisvec.NewIndex(redisClient)
		sessions = redisstore.NewSessionStore(redisClient)
		turnLock = redisstore.NewTurnLock(redisClient)
		healthCheck = pingAdapter{redisClient}
		logger.Info("using redis vector index and session store")
	} else {
		index = memoryvec.NewIndex()
		sessions = memstore.NewSessionStore()
		turnLock = memstore.NewTurnLock()
		logger.Info("using in-memory vector index and session store")
	}

	readiness := runtime.NewReadiness()

	// ===== Services =====
	ingestion := services.NewIngestionCoordinator(services.IngestionCoordinatorConfig{
		Source:     source,
		Builder:    services.NewDocumentBuilder(),
		Embedder:   embedder,
		Index:      index,
		Readiness:  readiness,
		MaxRecords: cfg.Pipeline.MaxHistoryRecords,
		Logger:     logger,
	})

	chat := services.NewChatService(services.ChatServiceConfig{
		Retriever:  services.NewRetriever(embedder, index),
		Composer:   services.NewPromptComposer(cfg.Pipeline.PersonaName, cfg.Pipeline.YearsAhead, cfg.Pipeline.MaxContextSize),
		Generator:  generator,
		Sessions:   sessions,
		TurnLock:   turnLock,
		Readiness:  readiness,
		RetrievalK: cfg.Pipeline.RetrievalK,
		Logger:     logger,
	})

	// Index the activity history in the background; the server accepts
	// chat traffic immediately and answers without evidence until the
	// first run completes.
	go func() {
		summary, err := ingestion.Run(ctx)
		if err != nil {
			logger.Error("initial ingestion failed", "error", err)
			return
		}
		logger.Info("initial ingestion finished",
			"documents", summary.DocumentsIndexed,
			"collections", summary.CollectionsTotal,
			"skipped", summary.Skipped,
		)
	}()

	// ===== HTTP server =====
	server := httpadapter.NewServer(
		httpadapter.Config{
			Addr:        cfg.Server.Addr,
			Version:     version,
			AdminSecret: cfg.AdminJWTSecret(),
		},
		chat,
		ingestion,
		readiness,
		healthCheck,
		logger,
	)

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// pingAdapter narrows the redis client to the health check interface.
type pingAdapter struct {
	client *redis.Client
}

func (p pingAdapter) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
