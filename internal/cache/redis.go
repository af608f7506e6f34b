// Package cache holds the Redis-backed side state of the player cache: the
// lazy backfill memo and the last rebuild report.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nflcache/ingestion/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix     = "nflcache:"
	backfillKey   = keyPrefix + "backfill:"
	lastReportKey = keyPrefix + "rebuild:last"

	// reportTTL keeps the last report visible across a missed nightly run
	reportTTL = 7 * 24 * time.Hour
)

// ErrMiss is returned by GetJSON when the key does not exist
var ErrMiss = errors.New("cache miss")

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache wraps a go-redis client
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Health pings Redis
func (c *RedisCache) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// SetJSON stores v as JSON under key; a zero ttl keeps the key forever
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the JSON stored under key into out, returning ErrMiss when absent
func (c *RedisCache) GetJSON(ctx context.Context, key string, out any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Remember marks a player as recently backfilled for ttl
func (c *RedisCache) Remember(ctx context.Context, externalID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, backfillKey+externalID, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to remember backfill for %s: %w", externalID, err)
	}
	return nil
}

// Recent reports whether a backfill for the player was attempted within its memo ttl
func (c *RedisCache) Recent(ctx context.Context, externalID string) (bool, error) {
	n, err := c.client.Exists(ctx, backfillKey+externalID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check backfill memo for %s: %w", externalID, err)
	}

	if n > 0 {
		metrics.RecordCacheHit("backfill_memo")
		return true, nil
	}
	metrics.RecordCacheMiss("backfill_memo")
	return false, nil
}

// SaveReport stores the last rebuild report
func (c *RedisCache) SaveReport(ctx context.Context, report any) error {
	if err := c.SetJSON(ctx, lastReportKey, report, reportTTL); err != nil {
		return err
	}

	log.Debug().Str("key", lastReportKey).Msg("Rebuild report cached")
	return nil
}

// LastReport loads the last rebuild report into out, returning ErrMiss when none is stored
func (c *RedisCache) LastReport(ctx context.Context, out any) error {
	err := c.GetJSON(ctx, lastReportKey, out)
	switch {
	case errors.Is(err, ErrMiss):
		metrics.RecordCacheMiss("report")
	case err == nil:
		metrics.RecordCacheHit("report")
	}
	return err
}
