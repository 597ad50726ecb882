package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/pkg/logger"
	"github.com/jeovahfialho/trade-excursion/pkg/metrics"
	"go.uber.org/zap"
)

type TradeRepository struct {
	pool *pgxpool.Pool
}

func NewTradeRepository(pool *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{pool: pool}
}

// ListByEntryWindow retorna os trades com entry_date dentro da janela, em ordem crescente.
func (r *TradeRepository) ListByEntryWindow(ctx context.Context, window domain.TradeWindow) ([]domain.Trade, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DatabaseQueryDuration.WithLabelValues("trades_by_window"))

	query := `
        SELECT
            id,
            instrument,
            side,
            quantity,
            entry_price,
            close_price,
            entry_date,
            close_date
        FROM trades
        WHERE entry_date BETWEEN $1 AND $2
        ORDER BY entry_date ASC
    `

	rows, err := r.pool.Query(ctx, query, window.From, window.To)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("trades_by_window", "error").Inc()
		return nil, fmt.Errorf("erro ao buscar trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var trade domain.Trade
		err := rows.Scan(
			&trade.ID,
			&trade.Instrument,
			&trade.Side,
			&trade.Quantity,
			&trade.EntryPrice,
			&trade.ClosePrice,
			&trade.EntryDate,
			&trade.CloseDate,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar trades: %w", err)
	}

	metrics.DatabaseQueries.WithLabelValues("trades_by_window", "success").Inc()
	logger.WithContext(ctx).Info("trades carregados",
		zap.Time("from", window.From),
		zap.Time("to", window.To),
		zap.Int("trades", len(trades)))

	return trades, nil
}
