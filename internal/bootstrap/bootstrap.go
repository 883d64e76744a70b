// Package bootstrap builds the shared infrastructure clients from config.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/config"
	"github.com/cuongbtq/email-verifier-be/shared/logger"
	"github.com/cuongbtq/email-verifier-be/shared/postgresql"
	"github.com/cuongbtq/email-verifier-be/shared/rabbitmq"
	"github.com/cuongbtq/email-verifier-be/shared/redis"
)

// InitLogger initializes and configures the application logger
func InitLogger(cfg *config.LoggingConfig, service string) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
		Service:      service,
	}

	return logger.New(loggerCfg)
}

// InitPostgreSQL initializes the PostgreSQL database client
func InitPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// RabbitMQConfig maps the application config onto the client config
func RabbitMQConfig(cfg *config.RabbitMQConfig) *rabbitmq.Config {
	return &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		DeadLetterExchange: cfg.Queue.DeadLetterExchange,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
		PublishConfirm:     cfg.Publish.Confirm,
		PrefetchCount:      cfg.Consumer.PrefetchCount,
	}
}

// InitRabbitMQ initializes the RabbitMQ client
func InitRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(RabbitMQConfig(cfg), logger)
}

// InitRedis connects to Redis when it is enabled. A nil client means disabled.
func InitRedis(cfg *config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		logger.Info("Redis disabled, reconciliation runs without distributed locks")
		return nil, nil
	}

	client, err := redis.NewClient(&redis.Config{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		KeyPrefix:   cfg.KeyPrefix,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
