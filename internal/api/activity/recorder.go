// Package activity publishes user activity events to RabbitMQ for the
// worker service to persist.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/google/uuid"
)

const (
	defaultBufferSize     = 256
	defaultPublishers     = 2
	defaultPublishTimeout = 5 * time.Second
)

// MessagePublisher is satisfied by *rabbitmq.Client
type MessagePublisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Event is the wire format consumed by the worker service
type Event struct {
	EventID     string         `json:"event_id"`
	UserID      string         `json:"user_id"`
	ModuleName  string         `json:"module_name"`
	Action      string         `json:"action"`
	EventSource string         `json:"event_source"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

type Config struct {
	BufferSize     int
	Publishers     int
	PublishTimeout time.Duration
}

type pending struct {
	event Event
	body  []byte
}

// Recorder hands activity events to a small publisher pool through a
// bounded buffer. Record never waits on the broker: when the buffer is full
// the event is dropped and logged.
type Recorder struct {
	publisher MessagePublisher
	logger    *slog.Logger
	timeout   time.Duration

	queue  chan pending
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts the publisher goroutines. Close drains them.
func NewRecorder(publisher MessagePublisher, cfg Config, logger *slog.Logger) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.Publishers <= 0 {
		cfg.Publishers = defaultPublishers
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}

	r := &Recorder{
		publisher: publisher,
		logger:    logger,
		timeout:   cfg.PublishTimeout,
		queue:     make(chan pending, cfg.BufferSize),
	}

	for i := 0; i < cfg.Publishers; i++ {
		r.wg.Add(1)
		go r.publishLoop()
	}

	return r
}

func (r *Recorder) Record(_ context.Context, a domain.Activity) {
	event := Event{
		EventID:     uuid.NewString(),
		UserID:      a.UserID,
		ModuleName:  a.Module,
		Action:      a.Action,
		EventSource: domain.EventSourceAPI,
		Description: a.Description,
		Metadata:    a.Metadata,
		OccurredAt:  time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("Failed to encode activity event",
			slog.String("action", a.Action),
			slog.Any("error", err),
		)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("Activity recorder closed, dropping event",
			slog.String("event_id", event.EventID),
			slog.String("action", event.Action),
		)
		return
	}

	select {
	case r.queue <- pending{event: event, body: body}:
	default:
		r.logger.Warn("Activity buffer full, dropping event",
			slog.String("event_id", event.EventID),
			slog.String("module", event.ModuleName),
			slog.String("action", event.Action),
		)
	}
}

func (r *Recorder) publishLoop() {
	defer r.wg.Done()

	for p := range r.queue {
		r.publish(p)
	}
}

func (r *Recorder) publish(p pending) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.publisher.PublishWithRetry(ctx, p.body, "application/json"); err != nil {
		r.logger.Warn("Failed to publish activity event",
			slog.String("event_id", p.event.EventID),
			slog.String("module", p.event.ModuleName),
			slog.String("action", p.event.Action),
			slog.Any("error", err),
		)
	}
}

// Close stops accepting events and blocks until the buffered ones are
// published or have failed.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}
