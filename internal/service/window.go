package service

import (
	"fmt"
	"time"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
)

const dateLayout = "2006-01-02"

// PreviousISOWeek devolve a semana ISO anterior a now: segunda 00:00 até
// domingo 23:59:59.999999999, em UTC.
func PreviousISOWeek(now time.Time) domain.TradeWindow {
	now = now.UTC()
	sinceMonday := (int(now.Weekday()) + 6) % 7
	thisMonday := time.Date(now.Year(), now.Month(), now.Day()-sinceMonday, 0, 0, 0, 0, time.UTC)

	return domain.TradeWindow{
		From: thisMonday.AddDate(0, 0, -7),
		To:   thisMonday.Add(-time.Nanosecond),
	}
}

// ParseWindow monta a janela a partir de datas YYYY-MM-DD (inclusivas).
// Sem datas, usa a semana ISO anterior; com só uma delas, a outra vem da semana anterior.
func ParseWindow(from, to string, now time.Time) (domain.TradeWindow, error) {
	window := PreviousISOWeek(now)

	if from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			return domain.TradeWindow{}, fmt.Errorf("data inicial inválida (use YYYY-MM-DD): %w", err)
		}
		window.From = parsed
	}

	if to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			return domain.TradeWindow{}, fmt.Errorf("data final inválida (use YYYY-MM-DD): %w", err)
		}
		window.To = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	if window.From.After(window.To) {
		return domain.TradeWindow{}, fmt.Errorf("data inicial %s depois da data final %s",
			window.From.Format(dateLayout), window.To.Format(dateLayout))
	}

	return window, nil
}
