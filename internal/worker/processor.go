package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cuongbtq/email-verifier-be/internal/worker/domain"
)

// processMessage persists one activity event. In-flight work outlives
// ctx cancellation and is bounded by the job timeout instead.
func (w *Worker) processMessage(ctx context.Context, msg *domain.ActivityMessage) error {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.jobTimeout)
	defer cancel()

	err := w.store.InsertActivityLog(jobCtx, msg)
	switch {
	case err == nil:
		w.logger.Info("Activity recorded",
			slog.String("event_id", msg.EventID),
			slog.String("user_id", msg.UserID),
			slog.String("module", msg.ModuleName),
			slog.String("action", msg.Action),
		)
		return nil

	case errors.Is(err, domain.ErrDuplicateEvent):
		// redelivery of an event that was already stored
		return nil

	default:
		return domain.NewRetryableError(err)
	}
}
