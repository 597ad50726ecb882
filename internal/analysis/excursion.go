package analysis

import (
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
)

const EntryMatchTolerance = 60 * time.Second

var hundred = decimal.NewFromInt(100)

// ObservedEntry retorna o fechamento da barra mais próxima da entrada, dentro
// da tolerância. Em caso de empate fica a barra que aparece primeiro.
func ObservedEntry(trade domain.Trade, bars []domain.Bar) (decimal.Decimal, bool) {
	var (
		best     *domain.Bar
		bestDiff time.Duration
	)

	for i := range bars {
		diff := absDuration(bars[i].Timestamp.Sub(trade.EntryDate))
		if diff > EntryMatchTolerance {
			continue
		}
		if best == nil || diff < bestDiff {
			best = &bars[i]
			bestDiff = diff
		}
	}

	if best == nil {
		return trade.EntryPrice, false
	}
	return best.Close, true
}

// Calculate mede MAE e MFE do trade sobre as barras entre entrada e fechamento
// (inclusivo), sempre relativos ao preço de entrada reportado.
func Calculate(trade domain.Trade, bars []domain.Bar) domain.Excursion {
	side := ResolveSide(trade.Side, trade.Quantity)
	entry := trade.EntryPrice

	mae := decimal.Zero
	mfe := decimal.Zero

	for _, bar := range bars {
		if bar.Timestamp.Before(trade.EntryDate) || bar.Timestamp.After(trade.CloseDate) {
			continue
		}

		var adverse, favorable decimal.Decimal
		if side == domain.SideLong {
			adverse = entry.Sub(bar.Low)
			favorable = bar.High.Sub(entry)
		} else {
			adverse = bar.High.Sub(entry)
			favorable = entry.Sub(bar.Low)
		}

		if adverse.GreaterThan(mae) {
			mae = adverse
		}
		if favorable.GreaterThan(mfe) {
			mfe = favorable
		}
	}

	observed, matched := ObservedEntry(trade, bars)

	return domain.Excursion{
		MAE:                mae,
		MFE:                mfe,
		EntryPriceFromData: observed,
		PriceDifference:    entry.Sub(observed).Abs(),
		EntryMatched:       matched,
	}
}

// ZeroExcursion é usado quando não foi possível buscar as barras do instrumento.
func ZeroExcursion(trade domain.Trade) domain.Excursion {
	return domain.Excursion{
		MAE:                decimal.Zero,
		MFE:                decimal.Zero,
		EntryPriceFromData: trade.EntryPrice,
		PriceDifference:    decimal.Zero,
	}
}

func Derive(trade domain.Trade, exc domain.Excursion, now time.Time) domain.TradeAnalytics {
	riskReward := decimal.Zero
	if exc.MAE.IsPositive() {
		riskReward = exc.MFE.Div(exc.MAE)
	}

	efficiency := decimal.Zero
	if exc.MFE.IsPositive() {
		efficiency = trade.ClosePrice.Sub(trade.EntryPrice).Abs().Div(exc.MFE).Mul(hundred)
	}

	return domain.TradeAnalytics{
		TradeID:            trade.ID,
		MAE:                exc.MAE,
		MFE:                exc.MFE,
		EntryPriceFromData: exc.EntryPriceFromData,
		PriceDifference:    exc.PriceDifference,
		RiskRewardRatio:    riskReward,
		Efficiency:         efficiency,
		UpdatedAt:          now,
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
