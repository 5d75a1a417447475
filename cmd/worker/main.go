package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"deckforge.app/wizard/common/id"
	"deckforge.app/wizard/common/llm"
	"deckforge.app/wizard/common/logger"
	"deckforge.app/wizard/common/otel"
	"deckforge.app/wizard/core/config"
	"deckforge.app/wizard/core/db"
	"deckforge.app/wizard/internal/deck"
	"deckforge.app/wizard/internal/queue"
	"deckforge.app/wizard/internal/store"
	"deckforge.app/wizard/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "deckforge worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Generation.RedisGroup,
		"consumer_name", cfg.Generation.RedisConsumer)

	// Different node ID than the server so snowflakes never collide.
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
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
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Generation.RedisStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Generation.RedisStream,
		Group:        cfg.Generation.RedisGroup,
		Consumer:     cfg.Generation.RedisConsumer,
		DLQStream:    cfg.Generation.RedisDLQStream,
		BatchSize:    1, // One deck at a time: generation is LLM-bound
		Block:        5 * time.Second,
		MaxAttempts:  3,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	// Deck generation is the worker's whole job; no LLM means no worker.
	llmClient, err := llm.NewAgentClient(llm.Config{
		Provider: cfg.DeckLLM.Provider,
		APIKey:   cfg.DeckLLM.APIKey,
		BaseURL:  cfg.DeckLLM.BaseURL,
		Model:    cfg.DeckLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create deck llm client", "error", err)
		os.Exit(1)
	}
	generator := deck.NewLLMGenerator(llmClient, cfg.DeckLLM.MaxTokens)

	stores := store.NewStores(database.Pool())
	txRunner := &workerTxRunnerAdapter{db: database}
	processor := worker.NewProcessor(stores.Sessions(), stores.Decks(), stores.GenerationLogs(), generator, txRunner)

	w := worker.New(consumer, processor, worker.Config{
		MaxAttempts: 3,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Generation.RedisStream,
		Group:     cfg.Generation.RedisGroup,
		Consumer:  cfg.Generation.RedisConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	sweeper := worker.NewSweeper(stores.Sessions(), worker.SweeperConfig{
		AbandonAfter: cfg.Wizard.AbandonAfter,
	})

	errCh := make(chan error, 3)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()
	go func() {
		sweeper.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop the periodic loops first (quick), then the worker, which may be
	// mid-generation.
	sweeper.Stop()
	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

// workerTxRunnerAdapter bridges db.DB to worker.TxRunner.
type workerTxRunnerAdapter struct {
	db *db.DB
}

func (a *workerTxRunnerAdapter) WithTx(ctx context.Context, fn func(stores worker.StoreProvider) error) error {
	return a.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(store.NewStores(tx))
	})
}

const banner = `
██████╗ ███████╗ ██████╗██╗  ██╗███████╗ ██████╗ ██████╗  ██████╗ ███████╗
██╔══██╗██╔════╝██╔════╝██║ ██╔╝██╔════╝██╔═══██╗██╔══██╗██╔════╝ ██╔════╝
██║  ██║█████╗  ██║     █████╔╝ █████╗  ██║   ██║██████╔╝██║  ███╗█████╗
██║  ██║██╔══╝  ██║     ██╔═██╗ ██╔══╝  ██║   ██║██╔══██╗██║   ██║██╔══╝
██████╔╝███████╗╚██████╗██║  ██╗██║     ╚██████╔╝██║  ██║╚██████╔╝███████╗
╚═════╝ ╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝      ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`
