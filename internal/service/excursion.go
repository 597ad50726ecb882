package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/analysis"
	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/internal/marketdata"
	"github.com/jeovahfialho/trade-excursion/pkg/id"
	"github.com/jeovahfialho/trade-excursion/pkg/logger"
	"github.com/jeovahfialho/trade-excursion/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sampleSize = 5

type TradeSource interface {
	ListByEntryWindow(ctx context.Context, window domain.TradeWindow) ([]domain.Trade, error)
}

type AnalyticsStore interface {
	Upsert(ctx context.Context, analytics domain.TradeAnalytics) error
}

type ExcursionOptions struct {
	// APIKeyConfigured falso aborta a execução antes de qualquer processamento.
	APIKeyConfigured     bool
	FetchTimeout         time.Duration
	FetchDelay           time.Duration
	UpsertConcurrency    int
	DiscrepancyThreshold decimal.Decimal
}

type ExcursionService struct {
	trades  TradeSource
	fetcher marketdata.BarFetcher
	store   AnalyticsStore
	opts    ExcursionOptions
	now     func() time.Time
}

func NewExcursionService(trades TradeSource, fetcher marketdata.BarFetcher, store AnalyticsStore, opts ExcursionOptions) *ExcursionService {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.UpsertConcurrency <= 0 {
		opts.UpsertConcurrency = 10
	}

	return &ExcursionService{
		trades:  trades,
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		now:     time.Now,
	}
}

type tradeResult struct {
	trade     domain.Trade
	excursion domain.Excursion
	analytics domain.TradeAnalytics
}

// Run executa agrupamento, busca de barras por instrumento, cálculo e
// persistência. Falhas de busca e de upsert ficam contidas no instrumento e
// no trade; só erros de pré-condição ou da leitura de trades abortam a execução.
func (s *ExcursionService) Run(ctx context.Context, window domain.TradeWindow) (*domain.RunResult, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ExcursionRunDuration)

	runID := id.New()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.WithContext(ctx)

	if !s.opts.APIKeyConfigured {
		metrics.ExcursionRuns.WithLabelValues("error").Inc()
		return nil, marketdata.ErrMissingAPIKey
	}

	log.Info("iniciando cálculo de excursões",
		zap.Time("from", window.From),
		zap.Time("to", window.To))

	trades, err := s.trades.ListByEntryWindow(ctx, window)
	if err != nil {
		metrics.ExcursionRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("erro ao carregar trades: %w", err)
	}

	result := &domain.RunResult{
		RunID:       runID,
		Success:     true,
		Window:      window,
		Instruments: []string{},
		Data:        []domain.ProcessedTrade{},
		Summary:     analysis.Summarize(nil),
	}

	if len(trades) == 0 {
		result.Message = "nenhum trade encontrado no período"
		result.Duration = timer.Elapsed().String()
		metrics.ExcursionRuns.WithLabelValues("empty").Inc()
		log.Info(result.Message)
		return result, nil
	}

	groups := analysis.GroupByInstrument(trades)
	instruments := analysis.SortedInstruments(groups)

	results := make([]tradeResult, 0, len(trades))
	for i, instrument := range instruments {
		if i > 0 {
			if err := wait(ctx, s.opts.FetchDelay); err != nil {
				metrics.ExcursionRuns.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("execução cancelada: %w", err)
			}
		}

		group := groups[instrument]
		bars, err := s.fetchBars(ctx, group)
		if err != nil {
			log.Warn("erro ao buscar barras, usando analytics zerados",
				zap.String("instrument", instrument),
				zap.Int("trades", len(group.Trades)),
				zap.Error(err))
			result.FetchFailures = append(result.FetchFailures, domain.FetchFailure{
				Instrument: instrument,
				Trades:     len(group.Trades),
				Error:      err.Error(),
			})
		}

		now := s.now().UTC()
		for _, trade := range group.Trades {
			exc := analysis.ZeroExcursion(trade)
			status := "zeroed"
			if err == nil {
				exc = analysis.Calculate(trade, bars)
				status = "computed"
			}
			results = append(results, tradeResult{
				trade:     trade,
				excursion: exc,
				analytics: analysis.Derive(trade, exc, now),
			})
			metrics.RecordTradeProcessed(status)
		}
	}

	saved, failed := s.persist(ctx, results)

	analytics := make([]domain.TradeAnalytics, len(results))
	for i, r := range results {
		analytics[i] = r.analytics
	}

	result.Processed = len(results)
	result.Saved = saved
	result.Failed = failed
	result.Instruments = instruments
	result.PriceDiscrepancies = analysis.CountDiscrepancies(analytics, s.opts.DiscrepancyThreshold)
	result.Summary = analysis.Summarize(analytics)
	result.Data = sample(results, sampleSize)
	result.Message = fmt.Sprintf("%d trades processados em %d instrumentos", result.Processed, len(instruments))
	if failed > 0 || len(result.FetchFailures) > 0 {
		result.Message = fmt.Sprintf("%s (%d falhas de gravação, %d falhas de busca)",
			result.Message, failed, len(result.FetchFailures))
	}
	result.Duration = timer.Elapsed().String()

	status := "success"
	if failed > 0 || len(result.FetchFailures) > 0 {
		status = "partial"
	}
	metrics.ExcursionRuns.WithLabelValues(status).Inc()

	log.Info("cálculo de excursões concluído",
		zap.Int("processed", result.Processed),
		zap.Int("saved", saved),
		zap.Int("failed", failed),
		zap.Int("fetch_failures", len(result.FetchFailures)),
		zap.Int("price_discrepancies", result.PriceDiscrepancies),
		zap.String("duration", result.Duration))

	return result, nil
}

func (s *ExcursionService) fetchBars(ctx context.Context, group *domain.InstrumentGroup) ([]domain.Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	timer := metrics.NewTimer()
	bars, err := s.fetcher.FetchBars(ctx, group.Instrument, group.EarliestDate, group.LatestDate)
	metrics.RecordFetch(group.Instrument, err, timer.Elapsed().Seconds())

	return bars, err
}

// persist dispara um upsert por trade e espera todos terminarem. Cada upsert
// é independente: uma falha só incrementa failed.
func (s *ExcursionService) persist(ctx context.Context, results []tradeResult) (saved, failed int) {
	outcomes := make([]error, len(results))

	var g errgroup.Group
	g.SetLimit(s.opts.UpsertConcurrency)

	for i := range results {
		i := i
		g.Go(func() error {
			outcomes[i] = s.safeUpsert(ctx, results[i].analytics)
			metrics.RecordUpsert(outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	log := logger.WithContext(ctx)
	for i, err := range outcomes {
		if err != nil {
			failed++
			log.Error("erro ao salvar analytics",
				zap.String("trade_id", results[i].trade.ID),
				zap.Error(err))
			continue
		}
		saved++
	}

	return saved, failed
}

func (s *ExcursionService) safeUpsert(ctx context.Context, a domain.TradeAnalytics) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic ao salvar analytics do trade %s: %v", a.TradeID, r)
		}
	}()
	return s.store.Upsert(ctx, a)
}

func sample(results []tradeResult, n int) []domain.ProcessedTrade {
	if len(results) < n {
		n = len(results)
	}

	data := make([]domain.ProcessedTrade, 0, n)
	for _, r := range results[:n] {
		data = append(data, domain.ProcessedTrade{
			TradeID:            r.trade.ID,
			Instrument:         r.trade.Instrument,
			Side:               analysis.ResolveSide(r.trade.Side, r.trade.Quantity),
			EntryPrice:         r.trade.EntryPrice,
			ClosePrice:         r.trade.ClosePrice,
			EntryDate:          r.trade.EntryDate,
			CloseDate:          r.trade.CloseDate,
			MAE:                r.analytics.MAE,
			MFE:                r.analytics.MFE,
			EntryPriceFromData: r.analytics.EntryPriceFromData,
			PriceDifference:    r.analytics.PriceDifference,
			EntryMatched:       r.excursion.EntryMatched,
			RiskRewardRatio:    r.analytics.RiskRewardRatio,
			Efficiency:         r.analytics.Efficiency,
		})
	}
	return data
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
