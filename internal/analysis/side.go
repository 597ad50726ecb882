package analysis

import (
	"strings"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
)

// ResolveSide decide a direção do trade. O campo side tem prioridade; o
// sinal da quantidade só é usado quando side está vazio ou não é reconhecido.
func ResolveSide(side string, quantity decimal.Decimal) domain.Side {
	switch strings.ToUpper(strings.TrimSpace(side)) {
	case "BUY", "LONG", "B", "L":
		return domain.SideLong
	case "SELL", "SHORT", "S":
		return domain.SideShort
	}

	if quantity.IsPositive() {
		return domain.SideLong
	}
	return domain.SideShort
}
