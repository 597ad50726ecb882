package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/pkg/id"
	"github.com/jeovahfialho/trade-excursion/pkg/metrics"
)

var ErrNotFound = domain.ErrAnalyticsNotFound

type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

const upsertAnalytics = `
    INSERT INTO trade_analytics (
        id, trade_id, mae, mfe, entry_price_from_data, price_difference,
        risk_reward_ratio, efficiency, computed_at, updated_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
    ON CONFLICT (trade_id) DO UPDATE SET
        mae                   = EXCLUDED.mae,
        mfe                   = EXCLUDED.mfe,
        entry_price_from_data = EXCLUDED.entry_price_from_data,
        price_difference      = EXCLUDED.price_difference,
        risk_reward_ratio     = EXCLUDED.risk_reward_ratio,
        efficiency            = EXCLUDED.efficiency,
        updated_at            = EXCLUDED.updated_at
`

// Upsert grava uma linha por trade; reexecutar sobrescreve, nunca duplica.
func (r *AnalyticsRepository) Upsert(ctx context.Context, a domain.TradeAnalytics) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DatabaseQueryDuration.WithLabelValues("analytics_upsert"))

	_, err := r.pool.Exec(ctx, upsertAnalytics,
		id.New(),
		a.TradeID,
		a.MAE,
		a.MFE,
		a.EntryPriceFromData,
		a.PriceDifference,
		a.RiskRewardRatio,
		a.Efficiency,
		a.UpdatedAt,
	)
	if err != nil {
		metrics.DatabaseQueries.WithLabelValues("analytics_upsert", "error").Inc()
		return fmt.Errorf("erro ao salvar analytics do trade %s: %w", a.TradeID, err)
	}

	metrics.DatabaseQueries.WithLabelValues("analytics_upsert", "success").Inc()
	return nil
}

func (r *AnalyticsRepository) Get(ctx context.Context, tradeID string) (*domain.TradeAnalytics, error) {
	query := `
        SELECT
            id,
            trade_id,
            mae,
            mfe,
            entry_price_from_data,
            price_difference,
            risk_reward_ratio,
            efficiency,
            updated_at
        FROM trade_analytics
        WHERE trade_id = $1
    `

	var a domain.TradeAnalytics
	err := r.pool.QueryRow(ctx, query, tradeID).Scan(
		&a.ID,
		&a.TradeID,
		&a.MAE,
		&a.MFE,
		&a.EntryPriceFromData,
		&a.PriceDifference,
		&a.RiskRewardRatio,
		&a.Efficiency,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar analytics: %w", err)
	}

	return &a, nil
}

func (r *AnalyticsRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM trade_analytics").Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar analytics: %w", err)
	}
	return count, nil
}
