package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/pkg/id"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = domain.ErrAnalyticsNotFound

const Schema = `
CREATE TABLE IF NOT EXISTS trade_analytics (
	id TEXT PRIMARY KEY,
	trade_id TEXT NOT NULL UNIQUE,
	mae TEXT NOT NULL,
	mfe TEXT NOT NULL,
	entry_price_from_data TEXT NOT NULL,
	price_difference TEXT NOT NULL,
	risk_reward_ratio TEXT NOT NULL,
	efficiency TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// AnalyticsStore grava analytics em um arquivo SQLite local, com a mesma
// semântica de upsert por trade_id do Postgres. Usado em execuções pela CLI.
type AnalyticsStore struct {
	db *sql.DB
}

func Open(path string) (*AnalyticsStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir sqlite: %w", err)
	}

	// SQLite aceita um escritor por vez; os upserts concorrentes fazem fila aqui.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao aplicar schema: %w", err)
	}

	return &AnalyticsStore{db: db}, nil
}

func (s *AnalyticsStore) Upsert(ctx context.Context, a domain.TradeAnalytics) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trade_analytics
		(id, trade_id, mae, mfe, entry_price_from_data, price_difference, risk_reward_ratio, efficiency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trade_id) DO UPDATE SET
			mae = excluded.mae,
			mfe = excluded.mfe,
			entry_price_from_data = excluded.entry_price_from_data,
			price_difference = excluded.price_difference,
			risk_reward_ratio = excluded.risk_reward_ratio,
			efficiency = excluded.efficiency,
			updated_at = excluded.updated_at`,
		id.New(), a.TradeID,
		a.MAE.String(), a.MFE.String(), a.EntryPriceFromData.String(), a.PriceDifference.String(),
		a.RiskRewardRatio.String(), a.Efficiency.String(), a.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("erro ao salvar analytics do trade %s: %w", a.TradeID, err)
	}
	return nil
}

func (s *AnalyticsStore) Get(ctx context.Context, tradeID string) (*domain.TradeAnalytics, error) {
	var a domain.TradeAnalytics
	err := s.db.QueryRowContext(ctx, `
		SELECT id, trade_id, mae, mfe, entry_price_from_data, price_difference, risk_reward_ratio, efficiency, updated_at
		FROM trade_analytics WHERE trade_id = ?`, tradeID).Scan(
		&a.ID, &a.TradeID, &a.MAE, &a.MFE, &a.EntryPriceFromData,
		&a.PriceDifference, &a.RiskRewardRatio, &a.Efficiency, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar analytics: %w", err)
	}
	return &a, nil
}

func (s *AnalyticsStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trade_analytics`).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar analytics: %w", err)
	}
	return count, nil
}

func (s *AnalyticsStore) Close() error {
	return s.db.Close()
}
