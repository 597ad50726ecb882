package postgres

// Schema cria as tabelas usadas pelo job. A tabela trades pertence ao
// journal; aqui ela só é lida.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id          TEXT PRIMARY KEY,
	instrument  TEXT NOT NULL,
	side        TEXT NOT NULL DEFAULT '',
	quantity    NUMERIC NOT NULL DEFAULT 0,
	entry_price NUMERIC NOT NULL,
	close_price NUMERIC NOT NULL,
	entry_date  TIMESTAMPTZ NOT NULL,
	close_date  TIMESTAMPTZ NOT NULL,
	CHECK (entry_date <= close_date)
);

CREATE INDEX IF NOT EXISTS idx_trades_entry_date ON trades(entry_date);

CREATE TABLE IF NOT EXISTS trade_analytics (
	id                    TEXT PRIMARY KEY,
	trade_id              TEXT NOT NULL UNIQUE REFERENCES trades(id) ON DELETE CASCADE,
	mae                   NUMERIC NOT NULL DEFAULT 0 CHECK (mae >= 0),
	mfe                   NUMERIC NOT NULL DEFAULT 0 CHECK (mfe >= 0),
	entry_price_from_data NUMERIC NOT NULL,
	price_difference      NUMERIC NOT NULL DEFAULT 0,
	risk_reward_ratio     NUMERIC NOT NULL DEFAULT 0,
	efficiency            NUMERIC NOT NULL DEFAULT 0,
	computed_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
