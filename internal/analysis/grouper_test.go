package analysis

import (
	"testing"

	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByInstrument(t *testing.T) {
	trades := []domain.Trade{
		{ID: "t1", Instrument: "ES", EntryDate: timeFromString("2024-01-03T14:00:00Z"), CloseDate: timeFromString("2024-01-03T15:00:00Z")},
		{ID: "t2", Instrument: "NQ", EntryDate: timeFromString("2024-01-02T10:00:00Z"), CloseDate: timeFromString("2024-01-02T10:30:00Z")},
		{ID: "t3", Instrument: "ES", EntryDate: timeFromString("2024-01-02T09:00:00Z"), CloseDate: timeFromString("2024-01-02T09:10:00Z")},
		{ID: "t4", Instrument: "ES", EntryDate: timeFromString("2024-01-04T16:00:00Z"), CloseDate: timeFromString("2024-01-05T01:00:00Z")},
	}

	groups := GroupByInstrument(trades)
	require.Len(t, groups, 2)

	es := groups["ES"]
	require.NotNil(t, es)
	assert.Len(t, es.Trades, 3)
	assert.Equal(t, timeFromString("2024-01-02T09:00:00Z"), es.EarliestDate)
	assert.Equal(t, timeFromString("2024-01-05T01:00:00Z"), es.LatestDate)

	// trade único: os limites são as próprias datas do trade
	nq := groups["NQ"]
	require.NotNil(t, nq)
	assert.Equal(t, trades[1].EntryDate, nq.EarliestDate)
	assert.Equal(t, trades[1].CloseDate, nq.LatestDate)

	for _, group := range groups {
		for _, trade := range group.Trades {
			assert.False(t, trade.EntryDate.Before(group.EarliestDate), "trade %s antes do início do grupo", trade.ID)
			assert.False(t, trade.CloseDate.After(group.LatestDate), "trade %s depois do fim do grupo", trade.ID)
		}
	}

	assert.Equal(t, []string{"ES", "NQ"}, SortedInstruments(groups))
}

func TestGroupByInstrument_Empty(t *testing.T) {
	groups := GroupByInstrument(nil)
	assert.Empty(t, groups)
	assert.Empty(t, SortedInstruments(groups))
}
