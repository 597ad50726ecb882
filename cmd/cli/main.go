package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jeovahfialho/trade-excursion/internal/config"
	"github.com/jeovahfialho/trade-excursion/internal/ingestion"
	"github.com/jeovahfialho/trade-excursion/internal/marketdata"
	"github.com/jeovahfialho/trade-excursion/internal/service"
	"github.com/jeovahfialho/trade-excursion/internal/storage/cache"
	"github.com/jeovahfialho/trade-excursion/internal/storage/postgres"
	"github.com/jeovahfialho/trade-excursion/internal/storage/sqlite"
	pkglogger "github.com/jeovahfialho/trade-excursion/pkg/logger"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "excursion",
		Short: "Trade Excursion Analyzer CLI",
		Long: `CLI para cálculo de MAE/MFE dos trades do diário.
Busca barras de 1 minuto no provedor de dados de mercado e grava os analytics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				return pkglogger.Init("debug", true)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Exibe logs detalhados")

	// Comando run
	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Executa o cálculo de excursões uma vez",
		Long: `Executa o job de excursões para a semana ISO anterior, ou para o
período informado em --from/--to (YYYY-MM-DD, inclusivo).
Com --sqlite os analytics são gravados em um arquivo local em vez do PostgreSQL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			sqlitePath, _ := cmd.Flags().GetString("sqlite")
			return runExcursions(cmd.Context(), from, to, sqlitePath)
		},
	}

	runCmd.Flags().String("from", "", "Data inicial (YYYY-MM-DD)")
	runCmd.Flags().String("to", "", "Data final (YYYY-MM-DD)")
	runCmd.Flags().String("sqlite", "", "Arquivo SQLite para gravar os analytics")

	// Comando bars
	var barsCmd = &cobra.Command{
		Use:   "bars [symbol]",
		Short: "Busca barras de 1 minuto de um instrumento",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			return printBars(cmd.Context(), args[0], from, to)
		},
	}

	barsCmd.Flags().String("from", "", "Data inicial (YYYY-MM-DD)")
	barsCmd.Flags().String("to", "", "Data final (YYYY-MM-DD)")
	_ = barsCmd.MarkFlagRequired("from")
	_ = barsCmd.MarkFlagRequired("to")

	// Comando import
	var importCmd = &cobra.Command{
		Use:   "import [files...]",
		Short: "Importa trades do journal a partir de CSV",
		Long: `Importa arquivos CSV exportados do journal para a tabela trades.
Colunas: id,instrument,side,quantity,entry_price,close_price,entry_date,close_date
(datas em RFC3339). Trades com id já existente são ignorados.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importFiles(cmd.Context(), args)
		},
	}

	// Comando cache-clear
	var cacheClearCmd = &cobra.Command{
		Use:   "cache-clear [symbol]",
		Short: "Remove barras do cache Redis",
		Long:  `Remove as barras em cache de um símbolo, ou de todos quando nenhum é informado.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := ""
			if len(args) == 1 {
				symbol = args[0]
			}
			return clearCache(cmd.Context(), symbol)
		},
	}

	// Comando migrate
	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o schema no PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	}

	// Comando health
	var healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Verifica saúde do sistema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkHealth(cmd.Context())
		},
	}

	rootCmd.AddCommand(runCmd, barsCmd, importCmd, cacheClearCmd, migrateCmd, healthCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runExcursions(ctx context.Context, from, to, sqlitePath string) error {
	cfg := config.Load()

	window, err := service.ParseWindow(from, to, time.Now())
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("erro ao conectar PostgreSQL: %w", err)
	}
	defer db.Close()

	var store service.AnalyticsStore = postgres.NewAnalyticsRepository(db.Pool())
	if sqlitePath != "" {
		local, err := sqlite.Open(sqlitePath)
		if err != nil {
			return err
		}
		defer local.Close()
		store = local
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	var fetcher marketdata.BarFetcher = client
	if redisCache := connectRedis(cfg); redisCache != nil {
		defer redisCache.Close()
		fetcher = marketdata.NewCachedFetcher(client, redisCache)
	}

	svc := service.NewExcursionService(
		postgres.NewTradeRepository(db.Pool()),
		fetcher,
		store,
		service.ExcursionOptions{
			APIKeyConfigured:     client.HasCredential(),
			FetchTimeout:         cfg.MarketDataTimeout,
			FetchDelay:           cfg.MarketDataFetchDelay,
			UpsertConcurrency:    cfg.UpsertConcurrency,
			DiscrepancyThreshold: decimal.NewFromFloat(cfg.PriceDiscrepancyThreshold),
		},
	)

	fmt.Printf("🚀 Calculando excursões de %s até %s...\n",
		window.From.Format("02/01/2006"), window.To.Format("02/01/2006"))

	result, err := svc.Run(ctx, window)
	if err != nil {
		return fmt.Errorf("erro ao calcular excursões: %w", err)
	}

	return printJSON(result)
}

func printBars(ctx context.Context, symbol, from, to string) error {
	cfg := config.Load()

	window, err := service.ParseWindow(from, to, time.Now())
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.MarketDataTimeout)
	defer cancel()

	bars, err := client.FetchBars(ctx, symbol, window.From, window.To)
	if err != nil {
		return fmt.Errorf("erro ao buscar barras: %w", err)
	}

	fmt.Printf("📊 %d barras para %s\n", len(bars), symbol)
	return printJSON(bars)
}

func importFiles(ctx context.Context, files []string) error {
	cfg := config.Load()

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("erro ao conectar PostgreSQL: %w", err)
	}
	defer db.Close()

	svc := service.NewIngestionService(
		ingestion.NewParser(cfg.ImportBatchSize, cfg.ImportWorkers),
		ingestion.NewBulkLoader(db.Pool(), cfg.ImportBatchSize),
	)

	var total int64
	for _, file := range files {
		fmt.Printf("📂 Importando %s...\n", file)

		result, err := svc.ProcessFile(ctx, file)
		if err != nil {
			return err
		}

		fmt.Printf("   ✅ %d lidos, %d novos, %d linhas com erro\n",
			result.ParsedCount, result.RecordsCount, len(result.Errors))
		total += result.RecordsCount
	}

	fmt.Printf("\n✅ %d trades importados\n", total)
	return nil
}

func clearCache(ctx context.Context, symbol string) error {
	cfg := config.Load()

	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	pattern := marketdata.CachePattern(symbol)
	if err := redisCache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("erro ao invalidar cache: %w", err)
	}

	fmt.Printf("🧹 Cache invalidado para padrão: %s\n", pattern)
	return nil
}

func migrate(ctx context.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("erro ao conectar PostgreSQL: %w", err)
	}
	defer db.Close()

	fmt.Println("🔄 Aplicando schema...")
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	fmt.Println("✅ Schema aplicado!")
	return nil
}

func checkHealth(ctx context.Context) error {
	cfg := config.Load()

	fmt.Println("🏥 Verificando saúde do sistema...")
	fmt.Println()

	healthy := true

	fmt.Print("PostgreSQL: ")
	db, err := postgres.NewDB(cfg)
	if err != nil {
		healthy = false
		fmt.Printf("❌ Erro: %v\n", err)
	} else {
		defer db.Close()

		if err := db.HealthCheck(ctx); err != nil {
			healthy = false
			fmt.Printf("❌ Erro: %v\n", err)
		} else {
			fmt.Println("✅ OK")
		}
	}

	fmt.Print("Redis: ")
	redisCache := connectRedis(cfg)
	if redisCache == nil {
		fmt.Println("⚠️  Não disponível (cache de barras desligado)")
	} else {
		defer redisCache.Close()

		if err := redisCache.HealthCheck(ctx); err != nil {
			fmt.Printf("❌ Erro: %v\n", err)
		} else {
			fmt.Println("✅ OK")
		}
	}

	fmt.Print("Credencial de dados de mercado: ")
	if cfg.MarketDataAPIKey == "" {
		healthy = false
		fmt.Printf("❌ %v\n", marketdata.ErrMissingAPIKey)
	} else {
		fmt.Println("✅ OK")
	}

	fmt.Println()
	if !healthy {
		return fmt.Errorf("sistema não está pronto")
	}

	fmt.Println("✅ Verificação concluída!")
	return nil
}

func newClient(cfg *config.Config) (*marketdata.Client, error) {
	symbols, err := marketdata.LoadSymbolMap(cfg.MarketDataSymbolsFile)
	if err != nil {
		return nil, err
	}

	return marketdata.NewClient(marketdata.ClientConfig{
		BaseURL: cfg.MarketDataURL,
		APIKey:  cfg.MarketDataAPIKey,
		Dataset: cfg.MarketDataDataset,
		Timeout: cfg.MarketDataTimeout,
		Symbols: symbols,
	}), nil
}

func connectRedis(cfg *config.Config) *cache.RedisCache {
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		return nil
	}
	return redisCache
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
