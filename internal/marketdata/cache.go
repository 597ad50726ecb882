package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/pkg/logger"
	"github.com/jeovahfialho/trade-excursion/pkg/metrics"
	"go.uber.org/zap"
)

const cachePrefix = "bars:"

type BarCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl ...time.Duration) error
}

// CachedFetcher guarda as barras de cada intervalo entre execuções.
// Falhas do cache nunca derrubam a busca.
type CachedFetcher struct {
	next  BarFetcher
	cache BarCache
}

func NewCachedFetcher(next BarFetcher, cache BarCache) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache}
}

func (f *CachedFetcher) FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	key := cacheKey(symbol, from, to)

	var cached []domain.Bar
	if err := f.cache.Get(ctx, key, &cached); err == nil {
		metrics.RecordCacheHit()
		return cached, nil
	}
	metrics.RecordCacheMiss()

	bars, err := f.next.FetchBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, bars); err != nil {
		logger.WithContext(ctx).Warn("erro ao salvar barras no cache",
			zap.String("key", key),
			zap.Error(err))
	}

	return bars, nil
}

func cacheKey(symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", cachePrefix, strings.ToUpper(strings.TrimSpace(symbol)), from.UTC().Format(dateLayout), to.UTC().Format(dateLayout))
}

// CachePattern casa todas as chaves de barras de symbol, ou de qualquer
// símbolo quando vazio.
func CachePattern(symbol string) string {
	if symbol == "" {
		return cachePrefix + "*"
	}
	return cachePrefix + strings.ToUpper(strings.TrimSpace(symbol)) + ":*"
}
