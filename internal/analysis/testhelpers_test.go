package analysis

import (
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
)

func timeFromString(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bar(ts string, low, high, close string) domain.Bar {
	return domain.Bar{
		Symbol:    "ES",
		Timestamp: timeFromString(ts),
		Open:      dec(close),
		High:      dec(high),
		Low:       dec(low),
		Close:     dec(close),
	}
}
