// Package worker consumes activity events from RabbitMQ and persists them
// to the activity log.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/worker/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageSource is satisfied by *rabbitmq.Client
type MessageSource interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// ActivityStore is satisfied by *storage.Storage
type ActivityStore interface {
	InsertActivityLog(ctx context.Context, msg *domain.ActivityMessage) error
}

// Config holds worker configuration
type Config struct {
	Logger      *slog.Logger
	Source      MessageSource
	Store       ActivityStore
	WorkerID    string
	Concurrency int
	JobTimeout  time.Duration
}

// Worker represents the background activity log consumer
type Worker struct {
	logger      *slog.Logger
	source      MessageSource
	store       ActivityStore
	workerID    string
	concurrency int
	jobTimeout  time.Duration
	jobsChan    chan *domain.Delivery
	wg          sync.WaitGroup
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = "worker-" + uuid.NewString()[:8]
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	jobTimeout := cfg.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}

	return &Worker{
		logger:      cfg.Logger,
		source:      cfg.Source,
		store:       cfg.Store,
		workerID:    workerID,
		concurrency: concurrency,
		jobTimeout:  jobTimeout,
		jobsChan:    make(chan *domain.Delivery, concurrency),
	}
}

// Start consumes until ctx is canceled or the delivery channel closes.
// Messages already handed to the pool are processed before Start returns.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.source.Consume(w.workerID)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	close(w.jobsChan)
	w.wg.Wait()

	w.logger.Info("Worker drained", slog.String("worker_id", w.workerID))
	return nil
}

// Stop blocks until every pool goroutine has exited
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
