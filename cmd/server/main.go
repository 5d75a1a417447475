package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"deckforge.app/wizard/common/id"
	"deckforge.app/wizard/common/llm"
	"deckforge.app/wizard/common/logger"
	"deckforge.app/wizard/common/otel"
	"deckforge.app/wizard/core/config"
	"deckforge.app/wizard/core/db"
	"deckforge.app/wizard/internal/enrich"
	"deckforge.app/wizard/internal/http/middleware"
	httprouter "deckforge.app/wizard/internal/http/router"
	"deckforge.app/wizard/internal/interview"
	"deckforge.app/wizard/internal/queue"
	"deckforge.app/wizard/internal/service"
	"deckforge.app/wizard/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "deckforge wizard starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Generation.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Generation.RedisStream)

	generationProducer := queue.NewRedisProducer(redisClient, cfg.Generation.RedisStream, slog.Default())
	defer generationProducer.Close()

	stores := store.NewStores(database.Pool())

	// Question generation and enrichment degrade to fallbacks when no LLM
	// is configured, so a missing key is not fatal here.
	var questionProvider interview.Provider
	if client, err := llm.New(llm.Config{
		APIKey:  cfg.InterviewLLM.APIKey,
		BaseURL: cfg.InterviewLLM.BaseURL,
		Model:   cfg.InterviewLLM.Model,
	}); err != nil {
		slog.WarnContext(ctx, "interview llm not configured, using static questions", "error", err)
	} else {
		questionProvider = interview.NewLLMProvider(client)
	}

	var enrichSource enrich.Source
	if client, err := llm.New(llm.Config{
		APIKey:  cfg.EnrichLLM.APIKey,
		BaseURL: cfg.EnrichLLM.BaseURL,
		Model:   cfg.EnrichLLM.Model,
	}); err != nil {
		slog.WarnContext(ctx, "enrichment llm not configured, enrichment disabled", "error", err)
	} else {
		enrichSource = enrich.NewLLMSource(client)
	}

	services := service.NewServices(stores, generationProducer, questionProvider, enrichSource, cfg.Wizard)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		DashboardURL: cfg.DashboardURL,
		IsProduction: cfg.IsProduction(),
	})

	return router
}

const banner = `
██████╗ ███████╗ ██████╗██╗  ██╗███████╗ ██████╗ ██████╗  ██████╗ ███████╗
██╔══██╗██╔════╝██╔════╝██║ ██╔╝██╔════╝██╔═══██╗██╔══██╗██╔════╝ ██╔════╝
██║  ██║█████╗  ██║     █████╔╝ █████╗  ██║   ██║██████╔╝██║  ███╗█████╗
██║  ██║██╔══╝  ██║     ██╔═██╗ ██╔══╝  ██║   ██║██╔══██╗██║   ██║██╔══╝
██████╔╝███████╗╚██████╗██║  ██╗██║     ╚██████╔╝██║  ██║╚██████╔╝███████╗
╚═════╝ ╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝      ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`
