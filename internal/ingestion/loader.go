package ingestion

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/pkg/metrics"
)

type BulkLoader struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewBulkLoader(pool *pgxpool.Pool, batchSize int) *BulkLoader {
	if batchSize <= 0 {
		batchSize = 1000
	}

	return &BulkLoader{
		pool:      pool,
		batchSize: batchSize,
	}
}

// LoadTrades copia os trades para uma tabela temporária e insere só os ids
// novos. Reimportar o mesmo arquivo não altera trades existentes.
func (l *BulkLoader) LoadTrades(ctx context.Context, trades []domain.Trade) (int64, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	timer := metrics.NewTimer()

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `CREATE TEMP TABLE trades_import (LIKE trades INCLUDING DEFAULTS) ON COMMIT DROP`); err != nil {
		return 0, fmt.Errorf("erro ao criar tabela temporária: %w", err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"trades_import"},
		Columns,
		&tradeSource{trades: trades},
	)
	if err != nil {
		metrics.RecordDatabaseQuery("copy_trades", "error", timer.Elapsed().Seconds())
		return 0, fmt.Errorf("erro no COPY: %w", err)
	}

	tag, err := tx.Exec(ctx, `
        INSERT INTO trades (id, instrument, side, quantity, entry_price, close_price, entry_date, close_date)
        SELECT id, instrument, side, quantity, entry_price, close_price, entry_date, close_date
        FROM trades_import
        ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		metrics.RecordDatabaseQuery("copy_trades", "error", timer.Elapsed().Seconds())
		return 0, fmt.Errorf("erro ao inserir trades: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("erro no commit: %w", err)
	}

	metrics.RecordDatabaseQuery("copy_trades", "success", timer.Elapsed().Seconds())
	return tag.RowsAffected(), nil
}

type tradeSource struct {
	trades []domain.Trade
	index  int
}

func (ts *tradeSource) Next() bool {
	ts.index++
	return ts.index <= len(ts.trades)
}

func (ts *tradeSource) Values() ([]interface{}, error) {
	if ts.index > len(ts.trades) {
		return nil, nil
	}

	trade := ts.trades[ts.index-1]
	return []interface{}{
		trade.ID,
		trade.Instrument,
		trade.Side,
		trade.Quantity,
		trade.EntryPrice,
		trade.ClosePrice,
		trade.EntryDate,
		trade.CloseDate,
	}, nil
}

func (ts *tradeSource) Err() error {
	return nil
}

// LoadTradesChunked carrega em lotes de batchSize, em sequência. Cada lote é
// uma transação; a contagem devolvida cobre os lotes já confirmados.
func (l *BulkLoader) LoadTradesChunked(ctx context.Context, trades []domain.Trade) (int64, error) {
	var total int64

	for _, chunk := range l.splitIntoChunks(trades) {
		count, err := l.LoadTrades(ctx, chunk)
		if err != nil {
			return total, err
		}
		total += count
	}

	return total, nil
}

func (l *BulkLoader) splitIntoChunks(trades []domain.Trade) [][]domain.Trade {
	var chunks [][]domain.Trade

	for i := 0; i < len(trades); i += l.batchSize {
		end := i + l.batchSize
		if end > len(trades) {
			end = len(trades)
		}
		chunks = append(chunks, trades[i:end])
	}

	return chunks
}
