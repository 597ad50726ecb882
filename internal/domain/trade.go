package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

type Trade struct {
	ID         string          `db:"id" json:"id"`
	Instrument string          `db:"instrument" json:"instrument"`
	Side       string          `db:"side" json:"side"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	EntryPrice decimal.Decimal `db:"entry_price" json:"entry_price"`
	ClosePrice decimal.Decimal `db:"close_price" json:"close_price"`
	EntryDate  time.Time       `db:"entry_date" json:"entry_date"`
	CloseDate  time.Time       `db:"close_date" json:"close_date"`
}

// TradeWindow limita a busca de trades pela data de entrada (inclusivo).
type TradeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type InstrumentGroup struct {
	Instrument   string
	Trades       []Trade
	EarliestDate time.Time
	LatestDate   time.Time
}
