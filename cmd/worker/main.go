package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/mediainsight/internal/app"
	"github.com/nikhilbhutani/mediainsight/internal/config"
	"github.com/nikhilbhutani/mediainsight/internal/logging"
	"github.com/nikhilbhutani/mediainsight/internal/queue"
	"github.com/nikhilbhutani/mediainsight/internal/queue/workers"
)

const concurrency = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log))

	svc, err := app.Build(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialise services", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	if svc.Redis == nil {
		slog.Error("worker cannot start", "error", app.ErrNoRedis, "addr", cfg.Redis.Addr)
		os.Exit(1)
	}

	srv := queue.NewServer(queue.RedisOpt(cfg.Redis), concurrency)

	registry := queue.NewHandlersRegistry()
	linkWorker := workers.NewLinkWorker(svc.Pipeline)
	registry.Register(queue.TypeLinkProcess, asynq.HandlerFunc(linkWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
