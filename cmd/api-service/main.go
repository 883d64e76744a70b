package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuongbtq/email-verifier-be/internal/api/activity"
	"github.com/cuongbtq/email-verifier-be/internal/api/handler"
	"github.com/cuongbtq/email-verifier-be/internal/api/router"
	"github.com/cuongbtq/email-verifier-be/internal/api/service"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"github.com/cuongbtq/email-verifier-be/internal/bootstrap"
	"github.com/cuongbtq/email-verifier-be/internal/config"
	"github.com/cuongbtq/email-verifier-be/shared/bouncify"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(context.Background(), dbClient.DB().DB); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		appLogger.Info("Database migrations applied")
	}

	rabbitClient, err := bootstrap.InitRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	redisClient, err := bootstrap.InitRedis(&cfg.Redis, appLogger.Logger)
	if err != nil {
		return err
	}

	// keep the interface nil when redis is disabled
	var locker service.Locker
	if redisClient != nil {
		defer redisClient.Close()
		locker = redisClient
	}

	provider := bouncify.New(&http.Client{Timeout: cfg.Bouncify.Timeout}, bouncify.Config{
		BaseURL: cfg.Bouncify.BaseURL,
		APIKey:  cfg.Bouncify.APIKey,
		Timeout: cfg.Bouncify.Timeout,
	})

	store := storage.NewStorage(dbClient)
	recorder := activity.NewRecorder(rabbitClient, activity.Config{
		BufferSize:     cfg.Activity.BufferSize,
		Publishers:     cfg.Activity.Publishers,
		PublishTimeout: cfg.Activity.PublishTimeout,
	}, appLogger.Logger)
	// runs before rabbitClient.Close so buffered events still go out
	defer recorder.Close()
	ledger := service.NewLedger(store, appLogger.Logger)
	reconciler := service.NewReconciler(store, provider, locker, recorder, service.ReconcilerConfig{
		Concurrency: cfg.Reconcile.Concurrency,
		LockTTL:     cfg.Reconcile.LockTTL,
	}, appLogger.Logger)
	lists := service.NewListService(store, store, ledger, provider, reconciler, recorder, service.ListServiceConfig{
		MaxUploadSize: cfg.Upload.MaxSizeBytes,
	}, appLogger.Logger)
	single := service.NewSingleVerifier(ledger, provider, store, recorder, appLogger.Logger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := router.SetupRouter(&handler.Dependencies{
		Logger:        appLogger.Logger,
		Health:        dbClient,
		Lists:         lists,
		Single:        single,
		Credits:       ledger,
		JWTSecret:     []byte(cfg.Auth.JWTSecret),
		MaxUploadSize: cfg.Upload.MaxSizeBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}
