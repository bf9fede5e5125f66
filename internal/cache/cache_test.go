package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/mcq"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "quizforge:pool:json:abc123", Key("abc123", mcq.FormatJSON))
	assert.NotEqual(t, Key("abc", mcq.FormatJSON), Key("abc", mcq.FormatLabeled))
}

func TestOptions(t *testing.T) {
	opts, err := Options("localhost:6380")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)

	opts, err = Options("redis://:secret@cache.internal:6379/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = Options("")
	assert.Error(t, err)

	_, err = Options("http://localhost:6379")
	assert.Error(t, err)
}

func TestNewPoolCacheDefaultTTL(t *testing.T) {
	c := NewPoolCache(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0).(*poolCache)
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestConnectUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 on loopback refuses connections.
	_, err := Connect(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
