package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/internal/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	loaded []domain.Trade
	err    error
}

func (l *fakeLoader) LoadTradesChunked(ctx context.Context, trades []domain.Trade) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.loaded = append(l.loaded, trades...)
	return int64(len(trades)), nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const journalCSV = `id,instrument,side,quantity,entry_price,close_price,entry_date,close_date
t1,ES,BUY,1,4500,4502,2024-01-02T14:30:00Z,2024-01-02T14:35:00Z
t2,ES,SELL,1,4500,4498,2024-01-02T15:30:00Z,2024-01-02T15:35:00Z
t3,ES,SELL,1,oops,4498,2024-01-02T15:30:00Z,2024-01-02T15:35:00Z
`

func TestIngestionService_ProcessFile(t *testing.T) {
	loader := &fakeLoader{}
	svc := NewIngestionService(ingestion.NewParser(10, 2), loader)

	result, err := svc.ProcessFile(context.Background(), writeCSV(t, journalCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ParsedCount)
	assert.Equal(t, int64(2), result.RecordsCount)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, loader.loaded, 2)
}

func TestIngestionService_ProcessFile_Errors(t *testing.T) {
	svc := NewIngestionService(ingestion.NewParser(10, 1), &fakeLoader{})
	_, err := svc.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	svc = NewIngestionService(ingestion.NewParser(10, 1), &fakeLoader{err: errors.New("COPY falhou")})
	_, err = svc.ProcessFile(context.Background(), writeCSV(t, journalCSV))
	assert.ErrorContains(t, err, "COPY falhou")
}
