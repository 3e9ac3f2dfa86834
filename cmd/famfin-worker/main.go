package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"famfin/internal/amqp"
	"famfin/internal/api"
	"famfin/internal/categories"
	"famfin/internal/config"
	"famfin/internal/localstore"
	"famfin/internal/replay"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting famfin-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := localstore.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open local store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	client := api.New(api.Config{
		BaseURL:      cfg.APIBaseURL,
		Token:        func() string { return cfg.APIToken },
		PageSize:     cfg.PageSize,
		ProbeTimeout: cfg.ProbeTimeout,
	})

	queue := replay.NewQueue(store)
	worker := replay.NewWorker(
		queue,
		client.Members,
		client.Transactions,
		categories.New(client.Categories),
		client,
		cfg.ReplayInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(ctx)
	})

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumePendingOps(ctx, func(msg *amqp.PendingOpMessage) error {
				logger.Info("Pending op announced", "op_id", msg.OpID, "entity", msg.Entity, "action", msg.Action)
				worker.Notify()
				return nil
			})
		})
	} else {
		logger.Info("AMQP disabled, relying on the replay ticker only")
	}

	// Drain anything left over from a previous run before settling into the
	// ticker loop.
	if err := worker.ProcessPending(ctx); err != nil {
		logger.Warn("Startup replay pass failed", "error", err)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
