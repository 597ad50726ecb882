package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://hist.databento.com"
	DefaultDataset = "GLBX.MDP3"

	rangePath   = "/v0/timeseries.get_range"
	schemaOHLCV = "ohlcv-1m"
	stypeIn     = "continuous"
	dateLayout  = "2006-01-02"
)

var ErrMissingAPIKey = errors.New("chave da API de dados de mercado não configurada")

// BarFetcher busca barras de um minuto para um símbolo em um intervalo de dias.
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error)
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Dataset string
	Timeout time.Duration
	Symbols *SymbolMap
}

type Client struct {
	baseURL    string
	apiKey     string
	dataset    string
	symbols    *SymbolMap
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Symbols == nil {
		cfg.Symbols = NewSymbolMap(nil)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		dataset: cfg.Dataset,
		symbols: cfg.Symbols,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// FetchBars busca barras OHLCV de 1 minuto do dia de from até o dia de to,
// inclusive. O fim do intervalo no provedor é exclusivo, por isso to+1 dia.
// Não há retry: quem chama decide o fallback.
func (c *Client) FetchBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	if !c.HasCredential() {
		return nil, ErrMissingAPIKey
	}

	providerSymbol := c.symbols.Resolve(symbol)

	params := url.Values{}
	params.Set("dataset", c.dataset)
	params.Set("symbols", providerSymbol)
	params.Set("schema", schemaOHLCV)
	params.Set("stype_in", stypeIn)
	params.Set("encoding", "json")
	params.Set("start", from.UTC().Format(dateLayout))
	params.Set("end", to.UTC().AddDate(0, 0, 1).Format(dateLayout))

	fullURL := c.baseURL + rangePath + "?" + params.Encode()

	logger.WithContext(ctx).Debug("buscando barras históricas",
		zap.String("symbol", symbol),
		zap.String("provider_symbol", providerSymbol),
		zap.String("url", fullURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar barras de %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status code: %d para %s: %s", resp.StatusCode, providerSymbol, string(body))
	}

	bars, err := DecodeBars(resp.Body, symbol)
	if err != nil {
		return nil, fmt.Errorf("erro ao decodificar barras de %s: %w", symbol, err)
	}

	logger.WithContext(ctx).Info("barras recebidas",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)))

	return bars, nil
}
