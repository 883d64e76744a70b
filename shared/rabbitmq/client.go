package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrNotConnected is returned when publishing or consuming on a closed client
	ErrNotConnected = errors.New("not connected to RabbitMQ")

	// ErrNotConfirmed is returned when the broker nacks a confirmed publish
	ErrNotConfirmed = errors.New("publish not confirmed by broker")
)

// Config holds RabbitMQ connection configuration
type Config struct {
	Host               string
	Port               int
	User               string
	Password           string
	VHost              string
	ExchangeName       string
	ExchangeType       string
	ExchangeDurable    bool
	ExchangeAutoDelete bool
	QueueName          string
	QueueDurable       bool
	QueueAutoDelete    bool
	QueueExclusive     bool
	DeadLetterExchange string
	RoutingKey         string
	RetryAttempts      int
	RetryInterval      time.Duration
	Heartbeat          time.Duration
	ConnectionTimeout  time.Duration
	PublishRetries     int
	PublishRetryDelay  time.Duration
	PublishBackoffMult float64
	PublishConfirm     bool
	PrefetchCount      int
}

// URI builds the AMQP URI with escaped credentials
func (c *Config) URI() string {
	vhost := c.VHost
	if vhost == "" {
		vhost = "/"
	}
	return amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     c.Port,
		Username: c.User,
		Password: c.Password,
		Vhost:    vhost,
	}.String()
}

// DeadLetterQueue is the queue bound to the dead-letter exchange
func (c *Config) DeadLetterQueue() string {
	return c.QueueName + ".dead"
}

// backoff yields the delay before each publish retry
type backoff struct {
	next time.Duration
	mult float64
}

func newBackoff(base time.Duration, mult float64) *backoff {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if mult <= 0 {
		mult = 2.0
	}
	return &backoff{next: base, mult: mult}
}

func (b *backoff) Next() time.Duration {
	d := b.next
	b.next = time.Duration(float64(b.next) * b.mult)
	return d
}

// Client publishes activity events and consumes them with manual acks
type Client struct {
	config  *Config
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger

	// amqp channels are not safe for concurrent publishing
	publishMu sync.Mutex
	mu        sync.RWMutex
	connected bool
}

// NewClient dials RabbitMQ, retrying per config, and declares the topology
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	c := &Client{
		config: config,
		logger: logger,
	}

	conn, err := c.dial()
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err := declareTopology(ch, config); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare topology: %w", err)
	}

	if config.PublishConfirm {
		if err := ch.Confirm(false); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
		}
	}

	c.conn = conn
	c.channel = ch
	c.connected = true

	logger.Info("RabbitMQ client initialized",
		slog.String("exchange", config.ExchangeName),
		slog.String("queue", config.QueueName),
		slog.String("dead_letter_exchange", config.DeadLetterExchange),
		slog.Bool("publisher_confirms", config.PublishConfirm),
	)

	return c, nil
}

func (c *Client) dial() (*amqp.Connection, error) {
	amqpConfig := amqp.Config{
		Heartbeat: c.config.Heartbeat,
		Locale:    "en_US",
	}
	if c.config.ConnectionTimeout > 0 {
		amqpConfig.Dial = amqp.DefaultDial(c.config.ConnectionTimeout)
	}

	attempts := max(c.config.RetryAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := amqp.DialConfig(c.config.URI(), amqpConfig)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		c.logger.Warn("Failed to connect to RabbitMQ",
			slog.String("host", c.config.Host),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err),
		)

		if attempt < attempts {
			time.Sleep(c.config.RetryInterval)
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}

// declareTopology declares the exchange, the queue and its binding. With a
// dead-letter exchange configured, rejected messages land in <queue>.dead.
func declareTopology(ch *amqp.Channel, cfg *Config) error {
	if err := ch.ExchangeDeclare(cfg.ExchangeName, cfg.ExchangeType, cfg.ExchangeDurable, cfg.ExchangeAutoDelete, false, false, nil); err != nil {
		return fmt.Errorf("exchange %s: %w", cfg.ExchangeName, err)
	}

	var queueArgs amqp.Table
	if cfg.DeadLetterExchange != "" {
		if err := ch.ExchangeDeclare(cfg.DeadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
			return fmt.Errorf("dead-letter exchange %s: %w", cfg.DeadLetterExchange, err)
		}
		if _, err := ch.QueueDeclare(cfg.DeadLetterQueue(), true, false, false, false, nil); err != nil {
			return fmt.Errorf("dead-letter queue %s: %w", cfg.DeadLetterQueue(), err)
		}
		if err := ch.QueueBind(cfg.DeadLetterQueue(), "", cfg.DeadLetterExchange, false, nil); err != nil {
			return fmt.Errorf("bind dead-letter queue: %w", err)
		}
		queueArgs = amqp.Table{"x-dead-letter-exchange": cfg.DeadLetterExchange}
	}

	if _, err := ch.QueueDeclare(cfg.QueueName, cfg.QueueDurable, cfg.QueueAutoDelete, cfg.QueueExclusive, false, queueArgs); err != nil {
		return fmt.Errorf("queue %s: %w", cfg.QueueName, err)
	}

	if err := ch.QueueBind(cfg.QueueName, cfg.RoutingKey, cfg.ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", cfg.QueueName, err)
	}

	return nil
}

func (c *Client) publishOnce(ctx context.Context, body []byte, contentType string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	confirm, err := c.channel.PublishWithDeferredConfirmWithContext(ctx, c.config.ExchangeName, c.config.RoutingKey, false, false,
		amqp.Publishing{
			ContentType:  contentType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return err
	}

	// nil unless the channel is in confirm mode
	if confirm == nil {
		return nil
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrNotConfirmed
	}
	return nil
}

// PublishWithRetry publishes body, backing off exponentially between attempts
func (c *Client) PublishWithRetry(ctx context.Context, body []byte, contentType string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	retries := c.config.PublishRetries
	if retries <= 0 {
		retries = 3
	}
	wait := newBackoff(c.config.PublishRetryDelay, c.config.PublishBackoffMult)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if lastErr = c.publishOnce(ctx, body, contentType); lastErr == nil {
			return nil
		}

		if attempt == retries {
			break
		}

		delay := wait.Next()
		c.logger.Warn("Publish to RabbitMQ failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("retry_after", delay),
			slog.Any("error", lastErr),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("publish canceled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed to publish message after %d attempts: %w", retries+1, lastErr)
}

// Consume sets QoS and starts consuming from the configured queue with manual acks
func (c *Client) Consume(consumerTag string) (<-chan amqp.Delivery, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	if c.config.PrefetchCount > 0 {
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	deliveries, err := c.channel.Consume(c.config.QueueName, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	c.logger.Info("Consuming from RabbitMQ",
		slog.String("queue", c.config.QueueName),
		slog.String("consumer_tag", consumerTag),
		slog.Int("prefetch_count", c.config.PrefetchCount),
	)

	return deliveries, nil
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Warn("Failed to close RabbitMQ channel", slog.Any("error", err))
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
		}
	}

	c.logger.Info("RabbitMQ connection closed")
	return nil
}

// IsConnected reports whether the client can publish or consume
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.conn != nil && !c.conn.IsClosed()
}
