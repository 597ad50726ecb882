package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
)

// Colunas esperadas no export do journal, nesta ordem, com cabeçalho.
var Columns = []string{
	"id", "instrument", "side", "quantity",
	"entry_price", "close_price", "entry_date", "close_date",
}

type Parser struct {
	batchSize int
	workers   int
}

func NewParser(batchSize, workers int) *Parser {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if workers <= 0 {
		workers = 1
	}

	return &Parser{
		batchSize: batchSize,
		workers:   workers,
	}
}

type ParseResult struct {
	Trades []domain.Trade
	Errors []error
}

// ParseFile lê o CSV e distribui as linhas entre os workers. Linhas inválidas
// vão para Errors e não interrompem a leitura; a ordem dos trades não é preservada.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*ParseResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err == io.EOF {
		return &ParseResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler cabeçalho: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	jobs := make(chan record, p.workers*2)
	results := make(chan *ParseResult, p.workers)

	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg)
	}

	readErrs := make([]error, 0)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer close(jobs)

		line := 1
		for {
			line++
			fields, err := csvReader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				readErrs = append(readErrs, fmt.Errorf("linha %d: %w", line, err))
				continue
			}

			select {
			case <-ctx.Done():
				return
			case jobs <- record{line: line, fields: fields}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	finalResult := &ParseResult{
		Trades: make([]domain.Trade, 0, p.batchSize),
		Errors: make([]error, 0),
	}

	for result := range results {
		finalResult.Trades = append(finalResult.Trades, result.Trades...)
		finalResult.Errors = append(finalResult.Errors, result.Errors...)
	}
	<-readDone
	finalResult.Errors = append(finalResult.Errors, readErrs...)

	if err := ctx.Err(); err != nil {
		return finalResult, err
	}

	return finalResult, nil
}

type record struct {
	line   int
	fields []string
}

func (p *Parser) worker(ctx context.Context, jobs <-chan record,
	results chan<- *ParseResult, wg *sync.WaitGroup) {

	defer wg.Done()

	batch := &ParseResult{
		Trades: make([]domain.Trade, 0, p.batchSize),
	}

	for {
		select {
		case <-ctx.Done():
			if len(batch.Trades) > 0 || len(batch.Errors) > 0 {
				results <- batch
			}
			return

		case rec, ok := <-jobs:
			if !ok {
				if len(batch.Trades) > 0 || len(batch.Errors) > 0 {
					results <- batch
				}
				return
			}

			trade, err := parseRecord(rec.fields)
			if err != nil {
				batch.Errors = append(batch.Errors, fmt.Errorf("linha %d: %w", rec.line, err))
				continue
			}

			batch.Trades = append(batch.Trades, *trade)

			if len(batch.Trades) >= p.batchSize {
				results <- batch
				batch = &ParseResult{
					Trades: make([]domain.Trade, 0, p.batchSize),
				}
			}
		}
	}
}

func validateHeader(header []string) error {
	if len(header) < len(Columns) {
		return fmt.Errorf("cabeçalho inválido: esperado %s", strings.Join(Columns, ","))
	}
	for i, col := range Columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("coluna %d deveria ser %q, encontrado %q", i+1, col, header[i])
		}
	}
	return nil
}

func parseRecord(fields []string) (*domain.Trade, error) {
	if len(fields) < len(Columns) {
		return nil, fmt.Errorf("registro inválido: %v", fields)
	}

	id := strings.TrimSpace(fields[0])
	if id == "" {
		return nil, fmt.Errorf("id vazio")
	}

	instrument := strings.ToUpper(strings.TrimSpace(fields[1]))
	if instrument == "" {
		return nil, fmt.Errorf("instrumento vazio")
	}

	quantity := decimal.Zero
	if q := strings.TrimSpace(fields[3]); q != "" {
		var err error
		quantity, err = decimal.NewFromString(q)
		if err != nil {
			return nil, fmt.Errorf("quantidade inválida: %w", err)
		}
	}

	entryPrice, err := decimal.NewFromString(strings.TrimSpace(fields[4]))
	if err != nil {
		return nil, fmt.Errorf("preço de entrada inválido: %w", err)
	}

	closePrice, err := decimal.NewFromString(strings.TrimSpace(fields[5]))
	if err != nil {
		return nil, fmt.Errorf("preço de saída inválido: %w", err)
	}

	entryDate, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[6]))
	if err != nil {
		return nil, fmt.Errorf("data de entrada inválida: %w", err)
	}

	closeDate, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[7]))
	if err != nil {
		return nil, fmt.Errorf("data de saída inválida: %w", err)
	}

	if entryDate.After(closeDate) {
		return nil, fmt.Errorf("entrada %s depois da saída %s", fields[6], fields[7])
	}

	return &domain.Trade{
		ID:         id,
		Instrument: instrument,
		Side:       strings.TrimSpace(fields[2]),
		Quantity:   quantity,
		EntryPrice: entryPrice,
		ClosePrice: closePrice,
		EntryDate:  entryDate.UTC(),
		CloseDate:  closeDate.UTC(),
	}, nil
}
