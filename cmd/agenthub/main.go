package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	ahhttp "github.com/solvik/agenthub/internal/adapter/http"
	"github.com/solvik/agenthub/internal/adapter/litellm"
	"github.com/solvik/agenthub/internal/adapter/mcp"
	ahnats "github.com/solvik/agenthub/internal/adapter/nats"
	"github.com/solvik/agenthub/internal/adapter/pgvector"
	"github.com/solvik/agenthub/internal/adapter/postgres"
	"github.com/solvik/agenthub/internal/adapter/ristretto"
	"github.com/solvik/agenthub/internal/adapter/ws"
	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain/status"
	"github.com/solvik/agenthub/internal/logger"
	"github.com/solvik/agenthub/internal/middleware"
	"github.com/solvik/agenthub/internal/resilience"
	"github.com/solvik/agenthub/internal/service"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"llm_model", cfg.LiteLLM.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := ahnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Drain() }()

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	llmClient := litellm.NewClient(cfg.LiteLLM.URL, cfg.LiteLLM.MasterKey, cfg.LiteLLM.Model, cfg.LiteLLM.EmbeddingModel)
	llmClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	toolClient := mcp.NewClient("agenthub", version)

	// --- Services ---

	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	vectors := pgvector.NewStore(pool)

	hostname, _ := os.Hostname()
	availability := status.NewStore(hostname)

	// Reconnecting clients get the current availability pushed immediately
	// instead of waiting for the next transition.
	hub.SetSnapshot(func() (ws.Message, bool) {
		cur := availability.Current()
		data, err := json.Marshal(ws.AgentAvailabilityEvent{Available: cur.Available, UpdatedAt: cur.UpdatedAt})
		if err != nil {
			return ws.Message{}, false
		}
		return ws.Message{Type: ws.EventAgentAvailability, Payload: data}, true
	})

	agentSvc := service.NewAgentService(store, vectors, cache, &cfg.Cache, log)
	retrievalSvc := service.NewRetrievalService(llmClient, vectors, &cfg.Orchestrator, log)
	ingestSvc := service.NewIngestService(llmClient, vectors, hub, resilience.NewWorkPool(4), &cfg.Orchestrator, log)
	toolResolver := service.NewToolResolver(llmClient, toolClient, &cfg.Orchestrator, log)
	router := service.NewSkillRouter(llmClient, retrievalSvc, toolResolver, &cfg.Orchestrator, log)
	classifier := service.NewIntentClassifier(llmClient)
	chatSvc := service.NewChatService(store, classifier, router, availability, hub, &cfg.Orchestrator, log)

	// --- Availability watcher and relay ---

	watcher := service.NewAvailabilityWatcher(
		availability,
		service.ConfigAvailabilitySource(config.DefaultConfigFile),
		queue, hub, cfg.Availability.PollInterval, log,
	)
	go watcher.Run(ctx)

	cancelRelay, err := service.StartAvailabilityRelay(ctx, queue, availability, hub, log)
	if err != nil {
		return fmt.Errorf("availability relay: %w", err)
	}
	defer cancelRelay()

	// --- HTTP ---

	handlers := &ahhttp.Handlers{
		Agents:       agentSvc,
		Chat:         chatSvc,
		Ingest:       ingestSvc,
		Retrieval:    retrievalSvc,
		Availability: availability,
		LiteLLM:      llmClient,
		Pool:         pool,
		Queue:        queue,
		Hub:          hub,
	}

	r := chi.NewRouter()

	r.Use(ahhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(ahhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	ahhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
