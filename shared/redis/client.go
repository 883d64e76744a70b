// Package redis wraps go-redis with the connection setup and the short-lived
// locks used to serialize provider polling per job across API instances.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	KeyPrefix   string
}

// Client represents a Redis client
type Client struct {
	rdb    goredis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewClient connects to Redis and verifies the connection with PING
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        config.Addr,
		Password:    config.Password,
		DB:          config.DB,
		DialTimeout: config.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis",
		slog.String("addr", config.Addr),
		slog.Int("db", config.DB),
	)

	return NewFromUniversal(rdb, config.KeyPrefix, logger), nil
}

// NewFromUniversal wraps an existing go-redis client
func NewFromUniversal(rdb goredis.UniversalClient, prefix string, logger *slog.Logger) *Client {
	return &Client{rdb: rdb, prefix: prefix, logger: logger}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by someone else is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Acquire takes the named lock for ttl. When the lock is held elsewhere it
// returns acquired=false and a nil release func.
func (c *Client) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	fullKey := c.prefix + key
	token := uuid.NewString()

	ok, err := c.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the request context may already be canceled
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, c.rdb, []string{fullKey}, token).Err(); err != nil {
			c.logger.Warn("Failed to release redis lock",
				slog.String("key", fullKey),
				slog.Any("error", err),
			)
		}
	}

	return release, true, nil
}
