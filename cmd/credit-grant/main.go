// Command credit-grant adds purchased credits to a user's balance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/service"
	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"github.com/cuongbtq/email-verifier-be/internal/bootstrap"
	"github.com/cuongbtq/email-verifier-be/internal/config"
	"github.com/google/uuid"
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

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	userID := flag.String("user", "", "User id to credit")
	amount := flag.Int64("amount", 0, "Number of credits to add")
	reason := flag.String("reason", "Credits Purchased", "Ledger entry description")
	flag.Parse()

	if _, err := uuid.Parse(*userID); err != nil {
		return fmt.Errorf("invalid -user %q: %w", *userID, err)
	}

	if *amount <= 0 {
		return fmt.Errorf("-amount must be positive")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, "credit-grant")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	dbClient, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ledger := service.NewLedger(storage.NewStorage(dbClient), appLogger.Logger)
	entry, err := ledger.AddCredits(ctx, *userID, *amount, *reason)
	if err != nil {
		return fmt.Errorf("failed to add credits: %w", err)
	}

	appLogger.Info("Credits granted",
		slog.String("user_id", *userID),
		slog.Int64("amount", *amount),
		slog.Int64("balance", entry.BalanceAfter),
	)
	return nil
}
