package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/email-verifier-be/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop processes deliveries until jobsChan is closed
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for d := range w.jobsChan {
		err := w.processMessage(ctx, d.Message)

		if err == nil {
			if ackErr := d.Raw.Ack(false); ackErr != nil {
				w.logger.Error("Failed to ACK message",
					slog.String("worker_name", workerName),
					slog.String("event_id", d.Message.EventID),
					slog.String("error", ackErr.Error()),
				)
			}
			continue
		}

		requeue := shouldRequeue(err)
		w.logger.Error("Activity processing failed",
			slog.String("worker_name", workerName),
			slog.String("event_id", d.Message.EventID),
			slog.Bool("requeue", requeue),
			slog.String("error", err.Error()),
		)

		w.nack(d.Raw, requeue)
	}

	w.logger.Debug("Worker goroutine exited", slog.String("worker_name", workerName))
}

// shouldRequeue reports whether a failed delivery is worth another attempt
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrInvalidMessage) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
