package service

import (
	"context"
	"fmt"
	"os"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/internal/ingestion"
	"github.com/jeovahfialho/trade-excursion/pkg/logger"
	"go.uber.org/zap"
)

type TradeLoader interface {
	LoadTradesChunked(ctx context.Context, trades []domain.Trade) (int64, error)
}

// IngestionService importa o export CSV do journal para a tabela trades.
type IngestionService struct {
	parser *ingestion.Parser
	loader TradeLoader
}

func NewIngestionService(parser *ingestion.Parser, loader TradeLoader) *IngestionService {
	return &IngestionService{
		parser: parser,
		loader: loader,
	}
}

type ProcessFileResult struct {
	FilePath     string
	ParsedCount  int
	RecordsCount int64
	Errors       []error
}

func (s *IngestionService) ProcessFile(ctx context.Context, filePath string) (*ProcessFileResult, error) {
	logger.Info("processando arquivo", zap.String("file", filePath))

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir arquivo: %w", err)
	}
	defer f.Close()

	parsed, err := s.parser.ParseFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler %s: %w", filePath, err)
	}

	for _, e := range parsed.Errors {
		logger.Warn("linha ignorada", zap.String("file", filePath), zap.Error(e))
	}

	inserted, err := s.loader.LoadTradesChunked(ctx, parsed.Trades)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar trades: %w", err)
	}

	logger.Info("arquivo processado",
		zap.String("file", filePath),
		zap.Int("parsed", len(parsed.Trades)),
		zap.Int64("inserted", inserted),
		zap.Int("errors", len(parsed.Errors)))

	return &ProcessFileResult{
		FilePath:     filePath,
		ParsedCount:  len(parsed.Trades),
		RecordsCount: inserted,
		Errors:       parsed.Errors,
	}, nil
}
