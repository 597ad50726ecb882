package api

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteOptions struct {
	MetricsEnabled bool
	// CronRateLimit é o máximo de execuções por minuto e por IP na rota de cron.
	CronRateLimit int
}

func SetupRoutes(app *fiber.App, handler *Handler, opts RouteOptions) {
	if opts.CronRateLimit <= 0 {
		opts.CronRateLimit = 5
	}

	app.Use(RequestID())
	app.Use(ErrorHandler())

	// Health checks (sem rate limiting)
	app.Get("/health", handler.HealthCheck)
	app.Get("/ready", handler.ReadinessCheck)

	if opts.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	cron := app.Group("/api/cron")
	cron.Use(PrometheusMiddleware())
	cron.Use(RateLimiter(opts.CronRateLimit, time.Minute))
	cron.Get("/compute-trade-data", handler.ComputeTradeData)

	v1 := app.Group("/api/v1")
	v1.Use(PrometheusMiddleware())
	v1.Use(RateLimiter(100, time.Minute))
	v1.Get("/analytics/:tradeId", handler.GetTradeAnalytics)
}
