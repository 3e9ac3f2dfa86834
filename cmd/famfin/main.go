package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"famfin/internal/amqp"
	"famfin/internal/api"
	"famfin/internal/categories"
	"famfin/internal/config"
	"famfin/internal/data"
	apphttp "famfin/internal/http"
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
	var pending data.PendingQueue = queue
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Messaging is optional; queued ops are still picked up by the
			// worker's ticker.
			logger.Warn("AMQP unavailable, pending ops will not be announced", "error", err)
		} else {
			defer amqpClient.Close()
			pending = &amqp.NotifyingQueue{Queue: queue, Client: amqpClient}
		}
	}

	svc := data.New(data.Config{
		Members:       client.Members,
		Transactions:  client.Transactions,
		CategoryAdmin: client.Categories,
		Categories:    categories.New(client.Categories),
		Prober:        client,
		Local:         store,
		Queue:         pending,
	})

	mode := svc.Initialize(context.Background())
	logger.Info("Data service initialized", "mode", mode, "api", cfg.APIBaseURL)

	srv := apphttp.NewServer(":"+cfg.Port, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting famfin server", "port", cfg.Port, "mode", mode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
