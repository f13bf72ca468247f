package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"hishab/internal/amqp"
	"hishab/internal/config"
	applog "hishab/internal/log"
	"hishab/internal/services"
	"hishab/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("Starting reminder-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Initialize AMQP client: the scheduler publishes reminders, the
	// notifier consumes them
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			if cfg.WorkerMode == config.WorkerModeNotifier {
				logger.Error("Failed to initialize AMQP client", "error", err)
				os.Exit(1)
			}
			logger.Warn("Failed to initialize AMQP client, continuing in log-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized")
		}
	} else {
		logger.Info("AMQP disabled - reminders will be logged only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WorkerMode == config.WorkerModeNotifier {
		runNotifier(ctx, cancel, logger, amqpClient)
		return
	}
	runScheduler(ctx, cancel, logger, cfg, amqpClient)
}

// runScheduler materializes recurring expenses and publishes reminder
// messages on the configured cron schedule.
func runScheduler(ctx context.Context, cancel context.CancelFunc, logger *applog.Logger, cfg *config.Config, amqpClient *amqp.Client) {
	// The scheduler shares the snapshot database with the main server
	snaps, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer snaps.Close()

	ledger := services.NewLedger(ctx, snaps)

	var publisher services.ReminderPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	processor := services.NewReminderProcessor(ledger, publisher, cfg.ReminderHorizonDays)

	logger.Info("Reminder processor configured",
		"schedule", cfg.ReminderSchedule,
		"horizon_days", cfg.ReminderHorizonDays,
		"sqlite_db", cfg.SQLiteDBPath)

	// Run initial processing on startup
	logger.Info("Running initial reminder processing...")
	if err := processor.Process(ctx); err != nil {
		logger.Error("Initial processing failed", "error", err)
	}

	// Schedule periodic processing
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, func() {
		logger.Info("Running scheduled reminder processing...")
		if err := processor.Process(ctx); err != nil {
			logger.Error("Scheduled processing failed", "error", err)
		}
	}); err != nil {
		logger.Error("Failed to schedule reminder processing", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	_ = g.Wait()

	// Graceful shutdown: let an in-flight cron run finish
	logger.Info("Shutting down reminder-worker...")
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Reminder-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}

// runNotifier consumes published reminder messages and delivers them. The
// delivery target here is the structured log; a push or mail integration
// would hang off the same handler.
func runNotifier(ctx context.Context, cancel context.CancelFunc, logger *applog.Logger, client *amqp.Client) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeReminders(gctx, func(msg *amqp.ReminderMessage) error {
			logger.Info("Reminder notification",
				"notification", msg.Notification(),
				"expense_id", msg.ExpenseID,
				"bucket", msg.Bucket,
				"due_date", msg.DueDate)
			return nil
		})
	})
	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notifier stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Reminder-worker shutdown complete")
}
