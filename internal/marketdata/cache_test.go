package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	items  map[string][]byte
	setErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.items[key]
	if !ok {
		return errors.New("key not found")
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl ...time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

type countingFetcher struct {
	calls int
	bars  []domain.Bar
	err   error
}

func (f *countingFetcher) FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	f.calls++
	return f.bars, f.err
}

func TestCachedFetcher(t *testing.T) {
	next := &countingFetcher{bars: []domain.Bar{{
		Symbol:    "ES",
		Timestamp: time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC),
		High:      decimal.RequireFromString("4502.25"),
		Low:       decimal.RequireFromString("4498"),
		Close:     decimal.RequireFromString("4499.5"),
	}}}
	cache := newMemoryCache()
	fetcher := NewCachedFetcher(next, cache)

	ctx := context.Background()
	from, to := day("2024-01-02"), day("2024-01-05")

	first, err := fetcher.FetchBars(ctx, "ES", from, to)
	require.NoError(t, err)
	second, err := fetcher.FetchBars(ctx, "ES", from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Contains(t, cache.items, "bars:ES:2024-01-02:2024-01-05")
	require.Len(t, second, 1)
	assert.True(t, second[0].High.Equal(first[0].High))
	assert.True(t, second[0].Timestamp.Equal(first[0].Timestamp))

	// outro intervalo é outra chave
	_, err = fetcher.FetchBars(ctx, "ES", from, day("2024-01-06"))
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedFetcher_ErrorsAreNotCached(t *testing.T) {
	next := &countingFetcher{err: errors.New("upstream down")}
	cache := newMemoryCache()
	fetcher := NewCachedFetcher(next, cache)

	_, err := fetcher.FetchBars(context.Background(), "NQ", day("2024-01-02"), day("2024-01-02"))
	assert.Error(t, err)
	assert.Empty(t, cache.items)
}

func TestCachedFetcher_CacheWriteFailureIsIgnored(t *testing.T) {
	next := &countingFetcher{bars: []domain.Bar{{Symbol: "CL"}}}
	cache := newMemoryCache()
	cache.setErr = errors.New("redis down")
	fetcher := NewCachedFetcher(next, cache)

	bars, err := fetcher.FetchBars(context.Background(), "CL", day("2024-01-02"), day("2024-01-02"))
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestCachePattern(t *testing.T) {
	assert.Equal(t, "bars:*", CachePattern(""))
	assert.Equal(t, "bars:ES:*", CachePattern(" es "))
	assert.Equal(t, "bars:ES:2024-01-02:2024-01-05", cacheKey("es", day("2024-01-02"), day("2024-01-05")))
}
