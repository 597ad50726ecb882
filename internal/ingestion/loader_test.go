package ingestion

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jeovahfialho/trade-excursion/internal/storage/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		tb.Skip("TEST_DATABASE_URL não definido")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(tb, err)
	tb.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, postgres.Schema)
	require.NoError(tb, err)
	_, err = pool.Exec(ctx, "TRUNCATE trades CASCADE")
	require.NoError(tb, err)

	return pool
}

func TestBulkLoader_LoadTradesSkipsExisting(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	result, err := NewParser(100, 2).ParseFile(ctx, strings.NewReader(generateTestCSV(30)))
	require.NoError(t, err)

	loader := NewBulkLoader(pool, 8)

	inserted, err := loader.LoadTradesChunked(ctx, result.Trades)
	require.NoError(t, err)
	assert.Equal(t, int64(30), inserted)

	inserted, err = loader.LoadTradesChunked(ctx, result.Trades)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM trades").Scan(&count))
	assert.Equal(t, 30, count)
}

func BenchmarkBulkLoader(b *testing.B) {

	pool := setupTestDB(b)

	result, err := NewParser(10000, 4).ParseFile(context.Background(), strings.NewReader(generateTestCSV(10000)))
	if err != nil {
		b.Fatal(err)
	}

	benchmarks := []struct {
		name      string
		batchSize int
	}{
		{"SmallBatch", 100},
		{"MediumBatch", 1000},
		{"LargeBatch", 10000},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			loader := NewBulkLoader(pool, bm.batchSize)
			ctx := context.Background()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := loader.LoadTradesChunked(ctx, result.Trades); err != nil {
					b.Fatal(err)
				}

				pool.Exec(ctx, "TRUNCATE trades CASCADE")
			}
		})
	}
}
