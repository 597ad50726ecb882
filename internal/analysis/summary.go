package analysis

import (
	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
)

func Summarize(analytics []domain.TradeAnalytics) domain.RunSummary {
	summary := domain.RunSummary{
		AverageMAE:             decimal.Zero,
		MaxMAE:                 decimal.Zero,
		AverageMFE:             decimal.Zero,
		MaxMFE:                 decimal.Zero,
		AverageRiskRewardRatio: decimal.Zero,
		MaxRiskRewardRatio:     decimal.Zero,
	}
	if len(analytics) == 0 {
		return summary
	}

	var sumMAE, sumMFE, sumRR decimal.Decimal
	for _, a := range analytics {
		sumMAE = sumMAE.Add(a.MAE)
		sumMFE = sumMFE.Add(a.MFE)
		sumRR = sumRR.Add(a.RiskRewardRatio)

		summary.MaxMAE = decimal.Max(summary.MaxMAE, a.MAE)
		summary.MaxMFE = decimal.Max(summary.MaxMFE, a.MFE)
		summary.MaxRiskRewardRatio = decimal.Max(summary.MaxRiskRewardRatio, a.RiskRewardRatio)
	}

	n := decimal.NewFromInt(int64(len(analytics)))
	summary.AverageMAE = sumMAE.Div(n)
	summary.AverageMFE = sumMFE.Div(n)
	summary.AverageRiskRewardRatio = sumRR.Div(n)

	return summary
}

// CountDiscrepancies conta os trades cujo preço de entrada reportado difere do
// observado no mercado por mais que threshold.
func CountDiscrepancies(analytics []domain.TradeAnalytics, threshold decimal.Decimal) int {
	count := 0
	for _, a := range analytics {
		if a.PriceDifference.GreaterThan(threshold) {
			count++
		}
	}
	return count
}
