// Package seenfilter provides a Redis-backed Bloom filter flagging venue
// records already ingested by a previous pipeline run. It is a probabilistic
// fast path only: a hit produces a run-report warning, never a drop.
package seenfilter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the Redis connection and filter key.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
	// Capacity and ErrorRate feed BF.RESERVE when the key does not exist yet.
	Capacity  int
	ErrorRate float64
}

// Bloom wraps RedisBloom BF.* commands behind the pipeline's SeenFilter
// interface.
type Bloom struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// New connects to Redis, verifies connectivity, and reserves the filter when
// it does not exist yet. A failed BF.RESERVE is non-fatal: BF.ADD can
// auto-create the filter depending on server settings.
func New(ctx context.Context, cfg Config) (*Bloom, error) {
	if cfg.Key == "" {
		cfg.Key = "venues:seen"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 100000
	}
	if cfg.ErrorRate == 0 {
		cfg.ErrorRate = 0.001
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	b := &Bloom{client: client, key: cfg.Key, ttl: cfg.TTL}

	exists, err := client.Exists(pingCtx, cfg.Key).Result()
	if err == nil && exists == 0 {
		_ = client.Do(pingCtx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity).Err()
	}

	return b, nil
}

// Seen checks whether the fingerprint is probably present.
func (b *Bloom) Seen(ctx context.Context, fingerprint string) (bool, error) {
	res, err := b.client.Do(ctx, "BF.EXISTS", b.key, fingerprint).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Mark inserts the fingerprint and refreshes the key's TTL so the filter
// stays alive for the full window after the most recent run.
func (b *Bloom) Mark(ctx context.Context, fingerprint string) error {
	if err := b.client.Do(ctx, "BF.ADD", b.key, fingerprint).Err(); err != nil {
		return err
	}
	return b.client.Expire(ctx, b.key, b.ttl).Err()
}

// Close releases the underlying Redis client.
func (b *Bloom) Close() error {
	return b.client.Close()
}
