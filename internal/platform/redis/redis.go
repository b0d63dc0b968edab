// Package redis wraps a go-redis client as a small integer cache used for
// quota counts.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/studygen-api/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// pingTimeout bounds the connectivity check performed by New.
const pingTimeout = 3 * time.Second

// Cache stores integer counters with a TTL.
type Cache struct {
	client *goredis.Client
	logger *slog.Logger
}

// New connects to Redis and verifies the connection with a PING.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to redis", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))
	return NewFromClient(client, logger), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *goredis.Client, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client: client,
		logger: logger.With(slog.String("component", "redis_cache")),
	}
}

// GetCount returns the cached value for key. The boolean is false on a miss.
func (c *Cache) GetCount(ctx context.Context, key string) (int, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get %s from redis: %w", key, err)
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("cached value for %s is not an integer: %w", key, err)
	}
	return n, true, nil
}

// SetCount stores n under key for ttl.
func (c *Cache) SetCount(ctx context.Context, key string, n int, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, n, ttl).Err(); err != nil {
		return fmt.Errorf("set %s in redis: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s from redis: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
