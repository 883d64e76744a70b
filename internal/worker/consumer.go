package worker

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/email-verifier-be/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// startMessageDispatcher decodes deliveries and hands them to the worker pool.
// It returns when ctx is canceled or the broker closes the delivery channel.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		var delivery amqp.Delivery
		var ok bool

		select {
		case <-ctx.Done():
			w.logger.Info("Dispatcher stopped", slog.String("worker_id", w.workerID))
			return
		case delivery, ok = <-deliveries:
		}

		if !ok {
			w.logger.Warn("RabbitMQ delivery channel closed", slog.String("worker_id", w.workerID))
			return
		}

		msg, err := domain.DecodeActivityMessage(delivery.Body)
		if err != nil {
			w.logger.Error("Dropping malformed activity message",
				slog.Any("error", err),
				slog.String("body", string(delivery.Body)),
			)
			// dead-lettered when the queue has a DLX
			w.nack(delivery, false)
			continue
		}

		select {
		case w.jobsChan <- &domain.Delivery{Message: msg, Raw: delivery}:
		case <-ctx.Done():
			w.nack(delivery, true)
			return
		}
	}
}

func (w *Worker) nack(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Nack(false, requeue); err != nil {
		w.logger.Error("Failed to NACK message",
			slog.Uint64("delivery_tag", delivery.DeliveryTag),
			slog.Bool("requeue", requeue),
			slog.Any("error", err),
		)
	}
}
