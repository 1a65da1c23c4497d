// Command main-service runs the public, private and admin event API.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/database"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/handler"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/logger"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/stats"
)

func main() {
	cfg, err := config.LoadMain()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("main service failed", zap.Error(err))
	}
}

func run(cfg config.Main, log *zap.Logger) error {
	ctx := context.Background()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	// ── 2. Stats collaborator ────────────────────────────────────────────
	statsClient := stats.NewClient(cfg.Stats.BaseURL, cfg.Stats.Timeout)
	var sender stats.HitSender = statsClient
	if cfg.Stats.Recorder == config.RecorderQueue {
		queue, stop, err := startQueue(ctx, cfg, statsClient, log)
		if err != nil {
			return err
		}
		defer stop()
		sender = queue
	}
	recorder := stats.NewAsyncRecorder(sender, cfg.Stats.Workers, cfg.Stats.Buffer, log)
	defer recorder.Close()

	// ── 3. Wire up layers ────────────────────────────────────────────────
	users := repository.NewUserRepository(pool)
	categories := repository.NewCategoryRepository(pool)
	events := repository.NewEventRepository(pool)
	requests := repository.NewRequestRepository(pool)
	compilations := repository.NewCompilationRepository(pool)
	comments := repository.NewCommentRepository(pool)

	projector := service.NewProjector(requests, statsClient, cfg.Stats.App, log)
	h := handler.New(handler.Services{
		Events:       service.NewEventService(events, users, categories, comments, projector, recorder, cfg.Stats.App, log),
		Requests:     service.NewRequestService(requests, events, users, log),
		Users:        service.NewUserService(users, log),
		Categories:   service.NewCategoryService(categories, events, log),
		Compilations: service.NewCompilationService(compilations, events, projector, log),
		Comments:     service.NewCommentService(comments, events, users, log),
	}, log)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return serve(srv, log)
}

// startQueue connects to Redis and starts the asynq worker that forwards
// queued hits to the stats service. It returns the sender publishing hits and
// a function releasing everything it started.
func startQueue(ctx context.Context, cfg config.Main, client *stats.Client, log *zap.Logger) (stats.HitSender, func(), error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}

	queue := asynq.NewClientFromRedisClient(rdb)
	worker := stats.NewQueueServer(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Stats.Workers, log)
	if err := worker.Start(stats.NewQueueMux(stats.NewHitTaskHandler(client, log))); err != nil {
		_ = queue.Close()
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("start hit queue worker: %w", err)
	}
	log.Info("hit queue started", zap.String("redis", cfg.Redis.Addr), zap.String("queue", stats.QueueName))

	stop := func() {
		worker.Shutdown()
		_ = queue.Close()
		_ = rdb.Close()
	}
	return stats.NewQueueSender(queue), stop, nil
}

// serve runs srv until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
