package analysis

import (
	"sort"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
)

// GroupByInstrument agrupa os trades por instrumento em uma única passada.
// EarliestDate é a menor data de entrada do grupo e LatestDate a maior data
// de fechamento, então as barras de um único intervalo cobrem todos os trades.
func GroupByInstrument(trades []domain.Trade) map[string]*domain.InstrumentGroup {
	groups := make(map[string]*domain.InstrumentGroup)

	for _, trade := range trades {
		group, ok := groups[trade.Instrument]
		if !ok {
			groups[trade.Instrument] = &domain.InstrumentGroup{
				Instrument:   trade.Instrument,
				Trades:       []domain.Trade{trade},
				EarliestDate: trade.EntryDate,
				LatestDate:   trade.CloseDate,
			}
			continue
		}

		group.Trades = append(group.Trades, trade)
		if trade.EntryDate.Before(group.EarliestDate) {
			group.EarliestDate = trade.EntryDate
		}
		if trade.CloseDate.After(group.LatestDate) {
			group.LatestDate = trade.CloseDate
		}
	}

	return groups
}

func SortedInstruments(groups map[string]*domain.InstrumentGroup) []string {
	instruments := make([]string, 0, len(groups))
	for instrument := range groups {
		instruments = append(instruments, instrument)
	}
	sort.Strings(instruments)
	return instruments
}
