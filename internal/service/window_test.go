package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousISOWeek(t *testing.T) {
	tests := []struct {
		name string
		now  string
		from string
		to   string
	}{
		{"monday morning", "2024-01-08T06:00:00Z", "2024-01-01T00:00:00Z", "2024-01-07T23:59:59.999999999Z"},
		{"wednesday", "2024-01-10T12:00:00Z", "2024-01-01T00:00:00Z", "2024-01-07T23:59:59.999999999Z"},
		{"sunday night", "2024-01-14T23:59:00Z", "2024-01-01T00:00:00Z", "2024-01-07T23:59:59.999999999Z"},
		{"year boundary", "2024-01-03T00:00:00Z", "2023-12-25T00:00:00Z", "2023-12-31T23:59:59.999999999Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := PreviousISOWeek(parseNano(t, tt.now))

			assert.Equal(t, parseNano(t, tt.from), w.From)
			assert.Equal(t, parseNano(t, tt.to), w.To)
			assert.Equal(t, time.Monday, w.From.Weekday())
			assert.Equal(t, time.Sunday, w.To.Weekday())
		})
	}
}

func TestPreviousISOWeek_NonUTCInput(t *testing.T) {
	// 2024-01-07 22:00 em São Paulo já é segunda 01:00 em UTC
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 1, 7, 22, 0, 0, 0, loc)

	w := PreviousISOWeek(now)

	assert.Equal(t, parseNano(t, "2024-01-01T00:00:00Z"), w.From)
}

func TestParseWindow(t *testing.T) {
	now := parseNano(t, "2024-01-10T12:00:00Z")

	w, err := ParseWindow("", "", now)
	require.NoError(t, err)
	assert.Equal(t, PreviousISOWeek(now), w)

	w, err = ParseWindow("2024-02-01", "2024-02-03", now)
	require.NoError(t, err)
	assert.Equal(t, parseNano(t, "2024-02-01T00:00:00Z"), w.From)
	assert.Equal(t, parseNano(t, "2024-02-03T23:59:59.999999999Z"), w.To)

	_, err = ParseWindow("01/02/2024", "", now)
	assert.Error(t, err)

	_, err = ParseWindow("", "2024-13-01", now)
	assert.Error(t, err)

	_, err = ParseWindow("2024-02-05", "2024-02-01", now)
	assert.Error(t, err)
}

func parseNano(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return v
}
