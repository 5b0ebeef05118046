package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/config"
	applog "ledger/internal/log"
	"ledger/internal/storage"
	"ledger/internal/view"
	"ledger/internal/worker"
)

const refreshInterval = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentView,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required: the view worker consumes change events")
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize record store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	// Headless host: no carousel to move, so the scroll command is a no-op.
	synchronizer := view.NewSynchronizer(func(int) {},
		view.WithSuppressionWindow(cfg.SuppressionWindow))
	defer synchronizer.Close()

	viewWorker := worker.NewViewWorker(repo, synchronizer, cfg.ListLimit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return viewWorker.Run(gctx, refreshInterval)
	})

	g.Go(func() error {
		return events.ConsumeRecordChanges(gctx, viewWorker.HandleRecordChange(gctx))
	})

	logger.Info("Starting view worker",
		"queue", cfg.AMQPQueue,
		"refresh_interval", refreshInterval)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("View worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("View worker stopped gracefully")
}
