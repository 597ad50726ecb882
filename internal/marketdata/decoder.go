package marketdata

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/shopspring/decimal"
)

// Preços chegam em ponto fixo com escala 1e9.
const priceExponent = -9

// fixedInt aceita inteiros como número JSON ou como string.
type fixedInt int64

func (f *fixedInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("inteiro inválido %q: %w", s, err)
	}
	*f = fixedInt(v)
	return nil
}

type recordHeader struct {
	TsEvent fixedInt `json:"ts_event"`
}

type ohlcvRecord struct {
	Header  *recordHeader `json:"hd"`
	TsEvent fixedInt      `json:"ts_event"`
	Open    fixedInt      `json:"open"`
	High    fixedInt      `json:"high"`
	Low     fixedInt      `json:"low"`
	Close   fixedInt      `json:"close"`
	Volume  fixedInt      `json:"volume"`
}

func (r ohlcvRecord) timestamp() fixedInt {
	if r.Header != nil && r.Header.TsEvent != 0 {
		return r.Header.TsEvent
	}
	return r.TsEvent
}

func (r ohlcvRecord) toBar(symbol string) (domain.Bar, error) {
	ts := r.timestamp()
	if ts == 0 {
		return domain.Bar{}, fmt.Errorf("registro sem ts_event")
	}

	return domain.Bar{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(int64(ts) / int64(time.Millisecond)).UTC(),
		Open:      decimal.New(int64(r.Open), priceExponent),
		High:      decimal.New(int64(r.High), priceExponent),
		Low:       decimal.New(int64(r.Low), priceExponent),
		Close:     decimal.New(int64(r.Close), priceExponent),
		Volume:    int64(r.Volume),
	}, nil
}

// DecodeBars lê registros OHLCV em JSON delimitado por linha ou em um array JSON.
func DecodeBars(r io.Reader, symbol string) ([]domain.Bar, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return []domain.Bar{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	dec := json.NewDecoder(br)

	var records []ohlcvRecord
	if first == '[' {
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("erro ao decodificar array: %w", err)
		}
	} else {
		for {
			var rec ohlcvRecord
			err := dec.Decode(&rec)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("erro ao decodificar registro %d: %w", len(records)+1, err)
			}
			records = append(records, rec)
		}
	}

	bars := make([]domain.Bar, 0, len(records))
	for i, rec := range records {
		b, err := rec.toBar(symbol)
		if err != nil {
			return nil, fmt.Errorf("registro %d: %w", i+1, err)
		}
		bars = append(bars, b)
	}

	return bars, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
