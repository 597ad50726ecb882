package analysis

import (
	"testing"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	analytics := []domain.TradeAnalytics{
		{MAE: dec("5"), MFE: dec("3"), RiskRewardRatio: dec("0.6")},
		{MAE: dec("1"), MFE: dec("9"), RiskRewardRatio: dec("9")},
		{MAE: dec("0"), MFE: dec("0"), RiskRewardRatio: dec("0")},
	}

	s := Summarize(analytics)

	assert.True(t, s.AverageMAE.Equal(dec("2")))
	assert.True(t, s.MaxMAE.Equal(dec("5")))
	assert.True(t, s.AverageMFE.Equal(dec("4")))
	assert.True(t, s.MaxMFE.Equal(dec("9")))
	assert.True(t, s.AverageRiskRewardRatio.Equal(dec("3.2")))
	assert.True(t, s.MaxRiskRewardRatio.Equal(dec("9")))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.AverageMAE.IsZero())
	assert.True(t, s.MaxRiskRewardRatio.IsZero())
}

func TestCountDiscrepancies(t *testing.T) {
	analytics := []domain.TradeAnalytics{
		{PriceDifference: dec("0.25")},
		{PriceDifference: dec("0.5")},
		{PriceDifference: dec("0.75")},
		{PriceDifference: dec("3")},
	}

	assert.Equal(t, 2, CountDiscrepancies(analytics, dec("0.5")))
}
