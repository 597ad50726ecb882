package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *AnalyticsStore {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func sampleAnalytics(tradeID string) domain.TradeAnalytics {
	return domain.TradeAnalytics{
		TradeID:            tradeID,
		MAE:                decimal.RequireFromString("5"),
		MFE:                decimal.RequireFromString("3.25"),
		EntryPriceFromData: decimal.RequireFromString("4499.75"),
		PriceDifference:    decimal.RequireFromString("0.25"),
		RiskRewardRatio:    decimal.RequireFromString("0.65"),
		Efficiency:         decimal.RequireFromString("61.5384615384615385"),
		UpdatedAt:          time.Date(2024, 1, 8, 6, 0, 0, 0, time.UTC),
	}
}

func TestAnalyticsStore_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleAnalytics("t1")
	require.NoError(t, s.Upsert(ctx, want))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "t1", got.TradeID)
	assert.True(t, got.MAE.Equal(want.MAE))
	assert.True(t, got.MFE.Equal(want.MFE))
	assert.True(t, got.EntryPriceFromData.Equal(want.EntryPriceFromData))
	assert.True(t, got.Efficiency.Equal(want.Efficiency))
	assert.True(t, got.UpdatedAt.Equal(want.UpdatedAt))
}

func TestAnalyticsStore_UpsertOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalytics("t1")
	require.NoError(t, s.Upsert(ctx, a))
	first, err := s.Get(ctx, "t1")
	require.NoError(t, err)

	a.MAE = decimal.RequireFromString("8")
	require.NoError(t, s.Upsert(ctx, a))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.MAE.Equal(decimal.RequireFromString("8")))
	assert.Equal(t, first.ID, got.ID)
}

func TestAnalyticsStore_ConcurrentUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Upsert(ctx, sampleAnalytics(fmt.Sprintf("t%d", i%25)))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), count)
}

func TestAnalyticsStore_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
