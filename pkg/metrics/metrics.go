package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExcursionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "excursion_runs_total",
		Help: "Total number of excursion analyzer runs",
	}, []string{"status"})

	ExcursionRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "excursion_run_duration_seconds",
		Help:    "Duration of a full excursion analyzer run",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	TradesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trades_processed_total",
		Help: "Total number of trades processed",
	}, []string{"status"})

	MarketDataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_data_fetches_total",
		Help: "Total number of historical bar fetches",
	}, []string{"instrument", "status"})

	MarketDataFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "market_data_fetch_duration_seconds",
		Help:    "Duration of historical bar fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"instrument"})

	AnalyticsUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trade_analytics_upserts_total",
		Help: "Total number of trade analytics upserts",
	}, []string{"status"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	})

	DatabaseQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "database_queries_total",
		Help: "Total number of database queries",
	}, []string{"query_type", "status"})

	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "database_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query_type"})
)

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}

func RecordDatabaseQuery(queryType, status string, duration float64) {
	DatabaseQueries.WithLabelValues(queryType, status).Inc()
	DatabaseQueryDuration.WithLabelValues(queryType).Observe(duration)
}

func RecordTradeProcessed(status string) {
	TradesProcessed.WithLabelValues(status).Inc()
}

func RecordFetch(instrument string, err error, duration float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	MarketDataFetches.WithLabelValues(instrument, status).Inc()
	MarketDataFetchDuration.WithLabelValues(instrument).Observe(duration)
}

func RecordUpsert(err error) {
	if err != nil {
		AnalyticsUpserts.WithLabelValues("error").Inc()
		return
	}
	AnalyticsUpserts.WithLabelValues("success").Inc()
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
