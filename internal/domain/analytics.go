package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Excursion struct {
	MAE                decimal.Decimal `json:"mae"`
	MFE                decimal.Decimal `json:"mfe"`
	EntryPriceFromData decimal.Decimal `json:"entry_price_from_data"`
	PriceDifference    decimal.Decimal `json:"price_difference"`
	EntryMatched       bool            `json:"entry_matched"`
}

type TradeAnalytics struct {
	ID                 string          `db:"id" json:"id,omitempty"`
	TradeID            string          `db:"trade_id" json:"trade_id"`
	MAE                decimal.Decimal `db:"mae" json:"mae"`
	MFE                decimal.Decimal `db:"mfe" json:"mfe"`
	EntryPriceFromData decimal.Decimal `db:"entry_price_from_data" json:"entry_price_from_data"`
	PriceDifference    decimal.Decimal `db:"price_difference" json:"price_difference"`
	RiskRewardRatio    decimal.Decimal `db:"risk_reward_ratio" json:"risk_reward_ratio"`
	Efficiency         decimal.Decimal `db:"efficiency" json:"efficiency"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

type ProcessedTrade struct {
	TradeID            string          `json:"tradeId"`
	Instrument         string          `json:"instrument"`
	Side               Side            `json:"side"`
	EntryPrice         decimal.Decimal `json:"entryPrice"`
	ClosePrice         decimal.Decimal `json:"closePrice"`
	EntryDate          time.Time       `json:"entryDate"`
	CloseDate          time.Time       `json:"closeDate"`
	MAE                decimal.Decimal `json:"mae"`
	MFE                decimal.Decimal `json:"mfe"`
	EntryPriceFromData decimal.Decimal `json:"entryPriceFromData"`
	PriceDifference    decimal.Decimal `json:"priceDifference"`
	EntryMatched       bool            `json:"entryMatched"`
	RiskRewardRatio    decimal.Decimal `json:"riskRewardRatio"`
	Efficiency         decimal.Decimal `json:"efficiency"`
}

type RunSummary struct {
	AverageMAE             decimal.Decimal `json:"averageMae"`
	MaxMAE                 decimal.Decimal `json:"maxMae"`
	AverageMFE             decimal.Decimal `json:"averageMfe"`
	MaxMFE                 decimal.Decimal `json:"maxMfe"`
	AverageRiskRewardRatio decimal.Decimal `json:"averageRiskRewardRatio"`
	MaxRiskRewardRatio     decimal.Decimal `json:"maxRiskRewardRatio"`
}

type FetchFailure struct {
	Instrument string `json:"instrument"`
	Trades     int    `json:"trades"`
	Error      string `json:"error"`
}

// RunResult é o resumo de uma execução do job de excursões.
type RunResult struct {
	RunID              string           `json:"runId"`
	Success            bool             `json:"success"`
	Message            string           `json:"message"`
	Window             TradeWindow      `json:"window"`
	Processed          int              `json:"processed"`
	Saved              int              `json:"saved"`
	Failed             int              `json:"failed"`
	Instruments        []string         `json:"instruments"`
	PriceDiscrepancies int              `json:"priceDiscrepancies"`
	FetchFailures      []FetchFailure   `json:"fetchFailures,omitempty"`
	Data               []ProcessedTrade `json:"data"`
	Summary            RunSummary       `json:"summary"`
	Duration           string           `json:"duration,omitempty"`
}

var ErrAnalyticsNotFound = errors.New("analytics não encontrado")
