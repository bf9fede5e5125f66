// Package cache keeps generated question pools in redis, keyed by the hash
// of the document text they were generated from, so a re-uploaded document
// skips the completion service.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/quizforge/internal/mcq"
)

// DefaultTTL is how long a cached pool lives.
const DefaultTTL = 7 * 24 * time.Hour

// PoolCache stores pools by content hash and question format.
type PoolCache interface {
	// GetPool returns the cached pool, or nil if there is none.
	GetPool(ctx context.Context, contentHash string, format mcq.Format) (mcq.Pool, error)
	SetPool(ctx context.Context, contentHash string, format mcq.Format, pool mcq.Pool) error
	DeletePool(ctx context.Context, contentHash string, format mcq.Format) error
}

type poolCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPoolCache creates a redis-backed pool cache. A zero ttl uses DefaultTTL.
func NewPoolCache(client *redis.Client, ttl time.Duration) PoolCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &poolCache{client: client, ttl: ttl}
}

// Key returns the redis key for a pool.
func Key(contentHash string, format mcq.Format) string {
	return fmt.Sprintf("quizforge:pool:%s:%s", format, contentHash)
}

func (c *poolCache) SetPool(ctx context.Context, contentHash string, format mcq.Format, pool mcq.Pool) error {
	data, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(contentHash, format), data, c.ttl).Err()
}

func (c *poolCache) GetPool(ctx context.Context, contentHash string, format mcq.Format) (mcq.Pool, error) {
	data, err := c.client.Get(ctx, Key(contentHash, format)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pool mcq.Pool
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("decode cached pool: %w", err)
	}
	return pool, nil
}

func (c *poolCache) DeletePool(ctx context.Context, contentHash string, format mcq.Format) error {
	return c.client.Del(ctx, Key(contentHash, format)).Err()
}

// Options parses a redis URL. A bare host:port is accepted.
func Options(url string) (*redis.Options, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("empty redis url")
	}
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}

// Connect opens a client for url and checks it with a ping.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := Options(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
