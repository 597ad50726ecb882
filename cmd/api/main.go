package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jeovahfialho/trade-excursion/internal/api"
	"github.com/jeovahfialho/trade-excursion/internal/config"
	"github.com/jeovahfialho/trade-excursion/internal/marketdata"
	"github.com/jeovahfialho/trade-excursion/internal/service"
	"github.com/jeovahfialho/trade-excursion/internal/storage/cache"
	"github.com/jeovahfialho/trade-excursion/internal/storage/postgres"
	pkglogger "github.com/jeovahfialho/trade-excursion/pkg/logger"
)

func main() {
	cfg := config.Load()

	if err := pkglogger.Init(cfg.LogLevel, cfg.Environment == "development"); err != nil {
		log.Fatal("Erro ao inicializar logger:", err)
	}
	defer pkglogger.Close()

	db, err := connectPostgres(cfg)
	if err != nil {
		pkglogger.Fatal("erro ao conectar PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	redisCache := connectRedis(cfg)
	if redisCache != nil {
		defer redisCache.Close()
	}

	symbols, err := marketdata.LoadSymbolMap(cfg.MarketDataSymbolsFile)
	if err != nil {
		pkglogger.Fatal("erro ao carregar mapa de símbolos", zap.Error(err))
	}

	client := marketdata.NewClient(marketdata.ClientConfig{
		BaseURL: cfg.MarketDataURL,
		APIKey:  cfg.MarketDataAPIKey,
		Dataset: cfg.MarketDataDataset,
		Timeout: cfg.MarketDataTimeout,
		Symbols: symbols,
	})
	if !client.HasCredential() {
		pkglogger.Warn("MARKET_DATA_API_KEY não configurada, execuções vão falhar até que seja definida")
	}

	var fetcher marketdata.BarFetcher = client
	if redisCache != nil {
		fetcher = marketdata.NewCachedFetcher(client, redisCache)
	}

	analytics := postgres.NewAnalyticsRepository(db.Pool())
	excursionService := service.NewExcursionService(
		postgres.NewTradeRepository(db.Pool()),
		fetcher,
		analytics,
		service.ExcursionOptions{
			APIKeyConfigured:     client.HasCredential(),
			FetchTimeout:         cfg.MarketDataTimeout,
			FetchDelay:           cfg.MarketDataFetchDelay,
			UpsertConcurrency:    cfg.UpsertConcurrency,
			DiscrepancyThreshold: decimal.NewFromFloat(cfg.PriceDiscrepancyThreshold),
		},
	)

	checks := map[string]api.HealthChecker{"database": db}
	if redisCache != nil {
		checks["redis"] = redisCache
	}

	handler := api.NewHandler(excursionService, analytics, client.HasCredential(), checks)

	app := fiber.New(fiber.Config{
		Prefork:                 false,
		ServerHeader:            "Trade-Excursion",
		DisableStartupMessage:   false,
		AppName:                 "Trade Excursion Analyzer v1.0.0",
		ReadTimeout:             cfg.APIReadTimeout,
		WriteTimeout:            cfg.APIWriteTimeout,
		IdleTimeout:             120 * time.Second,
		ReadBufferSize:          8192,
		WriteBufferSize:         8192,
		ProxyHeader:             "X-Forwarded-For",
		EnableTrustedProxyCheck: true,
		BodyLimit:               1 * 1024 * 1024, // 1MB
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	api.SetupRoutes(app, handler, api.RouteOptions{
		MetricsEnabled: cfg.MetricsEnabled,
		CronRateLimit:  cfg.APICronRateLimit,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		pkglogger.Info("encerrando servidor")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			pkglogger.Error("erro ao encerrar servidor", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	pkglogger.Info("iniciando servidor", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		pkglogger.Fatal("erro no servidor", zap.Error(err))
	}
}

func connectPostgres(cfg *config.Config) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar conexão: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao testar conexão: %w", err)
	}

	pkglogger.Info("conectado ao PostgreSQL")
	return db, nil
}

func connectRedis(cfg *config.Config) *cache.RedisCache {
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		pkglogger.Warn("Redis não disponível, continuando sem cache de barras", zap.Error(err))
		return nil
	}

	pkglogger.Info("conectado ao Redis")
	return redisCache
}
