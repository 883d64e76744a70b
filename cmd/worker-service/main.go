package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/bootstrap"
	"github.com/cuongbtq/email-verifier-be/internal/config"
	"github.com/cuongbtq/email-verifier-be/internal/worker"
	"github.com/cuongbtq/email-verifier-be/internal/worker/storage"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	rabbitClient, err := bootstrap.InitRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	hostname, _ := os.Hostname()
	workerInstance := worker.NewWorker(&worker.Config{
		Logger:      appLogger.Logger,
		Source:      rabbitClient,
		Store:       storage.NewStorage(dbClient.DB(), appLogger.Logger),
		WorkerID:    fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		Concurrency: cfg.Worker.Concurrency,
		JobTimeout:  cfg.Worker.JobTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- workerInstance.Start(ctx)
	}()

	appLogger.Info("Worker service started",
		slog.Int("concurrency", cfg.Worker.Concurrency),
		slog.String("queue", cfg.RabbitMQ.Queue.Name),
	)

	select {
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received, draining in-flight activity")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("worker failed: %w", err)
		}
		appLogger.Warn("Delivery channel closed, shutting down")
		return nil
	}

	stopped := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		appLogger.Info("Worker service shutdown complete")
	case <-time.After(cfg.Worker.ShutdownTimeout):
		appLogger.Warn("Worker shutdown timed out, exiting with work in flight",
			slog.Duration("timeout", cfg.Worker.ShutdownTimeout),
		)
	}

	return nil
}
