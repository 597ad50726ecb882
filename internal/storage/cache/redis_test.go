package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requer um Redis real: TEST_REDIS_URL=redis://localhost:6379/15
func newTestCache(t *testing.T) *RedisCache {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL não definido")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	c := NewRedisCacheFromClient(redis.NewClient(opt), time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.HealthCheck(context.Background()))
	return c
}

func TestRedisCache_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Symbol string `json:"symbol"`
		Bars   int    `json:"bars"`
	}

	key := "test:bars:ES"
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	require.NoError(t, c.Set(ctx, key, payload{Symbol: "ES", Bars: 390}))

	var got payload
	require.NoError(t, c.Get(ctx, key, &got))
	assert.Equal(t, payload{Symbol: "ES", Bars: 390}, got)
}

func TestRedisCache_Miss(t *testing.T) {
	c := newTestCache(t)

	var got string
	err := c.Get(context.Background(), "test:missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "test:bars:NQ:1", 1))
	require.NoError(t, c.Set(ctx, "test:bars:NQ:2", 2))

	require.NoError(t, c.DeletePattern(ctx, "test:bars:NQ:*"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "test:bars:NQ:1", &v), ErrCacheMiss)
	assert.ErrorIs(t, c.Get(ctx, "test:bars:NQ:2", &v), ErrCacheMiss)
}
