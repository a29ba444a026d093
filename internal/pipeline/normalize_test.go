package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mergedRow(mutate func(*MergedRecord)) MergedRecord {
	rec := MergedRecord{
		RawRecord: RawRecord{
			Slug:      "bitcoin",
			Date:      "Sep 14, 2013",
			Open:      "92",
			High:      "100",
			Low:       "90",
			Close:     "95",
			Volume:    "1,234,567",
			MarketCap: "12,345,678",
		},
		Symbol: "BTC",
		Name:   "Bitcoin",
		Rank:   1,
	}
	if mutate != nil {
		mutate(&rec)
	}
	return rec
}

func TestNormalize_TypedFieldsAndDerivedMetrics(t *testing.T) {
	t.Parallel()

	out := Normalize([]MergedRecord{mergedRow(nil)})
	require.Len(t, out, 1)

	rec := out[0]
	require.Equal(t, "bitcoin", rec.Slug)
	require.Equal(t, "BTC", rec.Symbol)
	require.Equal(t, "Bitcoin", rec.Name)
	require.Equal(t, 1, rec.Rank)
	require.Equal(t, time.Date(2013, time.September, 14, 0, 0, 0, 0, time.UTC), rec.Date)
	require.Equal(t, 92.0, rec.Open)
	require.Equal(t, 100.0, rec.High)
	require.Equal(t, 90.0, rec.Low)
	require.Equal(t, 95.0, rec.Close)
	require.Equal(t, 1234567.0, rec.Volume)
	require.Equal(t, 12345678.0, rec.MarketCap)

	// (95-90)/(100-90) = 0.5, 100-90 = 10.
	require.Equal(t, 0.5, rec.CloseRatio)
	require.Equal(t, 10.0, rec.Spread)
}

func TestNormalize_CloseRatioRounding(t *testing.T) {
	t.Parallel()

	out := Normalize([]MergedRecord{mergedRow(func(rec *MergedRecord) {
		rec.Open = "1"
		rec.High = "3"
		rec.Low = "0"
		rec.Close = "1"
	})})
	require.Len(t, out, 1)
	// 1/3 rounded to four places.
	require.Equal(t, 0.3333, out[0].CloseRatio)
	require.Equal(t, 3.0, out[0].Spread)
}

func TestNormalize_FlatDayHasZeroRatio(t *testing.T) {
	t.Parallel()

	out := Normalize([]MergedRecord{mergedRow(func(rec *MergedRecord) {
		rec.Open = "50"
		rec.High = "50"
		rec.Low = "50"
		rec.Close = "50"
	})})
	require.Len(t, out, 1)
	require.Equal(t, 0.0, out[0].CloseRatio)
	require.Equal(t, 0.0, out[0].Spread)
}

func TestNormalize_PlaceholderQuantitiesBecomeZero(t *testing.T) {
	t.Parallel()

	out := Normalize([]MergedRecord{mergedRow(func(rec *MergedRecord) {
		rec.Volume = "-"
		rec.MarketCap = ""
	})})
	require.Len(t, out, 1)
	require.Equal(t, 0.0, out[0].Volume)
	require.Equal(t, 0.0, out[0].MarketCap)
}

// TestNormalize_PlaceholderPriceDropsRow pins the asymmetry: the
// missing-value marker is substituted for volume/market only, never for
// the OHLC fields.
func TestNormalize_PlaceholderPriceDropsRow(t *testing.T) {
	t.Parallel()

	out := Normalize([]MergedRecord{mergedRow(func(rec *MergedRecord) {
		rec.Close = "-"
	})})
	require.Empty(t, out)
}

func TestNormalize_DropsRowsThatFailCoercion(t *testing.T) {
	t.Parallel()

	bad := []MergedRecord{
		mergedRow(func(rec *MergedRecord) { rec.Date = "not a date" }),
		mergedRow(func(rec *MergedRecord) { rec.Open = "n/a" }),
		mergedRow(func(rec *MergedRecord) { rec.High = "" }),
		mergedRow(func(rec *MergedRecord) { rec.Volume = "junk" }),
	}
	good := mergedRow(nil)

	out := Normalize(append(bad, good))
	require.Len(t, out, 1)
	require.Equal(t, "bitcoin", out[0].Slug)
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	input := []MergedRecord{
		mergedRow(nil),
		mergedRow(func(rec *MergedRecord) { rec.Date = "Oct 01, 2013"; rec.Volume = "-" }),
		mergedRow(func(rec *MergedRecord) { rec.Open = "bogus" }),
	}

	first := Normalize(input)
	second := Normalize(input)
	require.Equal(t, first, second)
}

func TestNormalize_DerivedInvariants(t *testing.T) {
	t.Parallel()

	rows := []MergedRecord{
		mergedRow(nil),
		mergedRow(func(rec *MergedRecord) { rec.Close = "90" }),
		mergedRow(func(rec *MergedRecord) { rec.Close = "100" }),
		mergedRow(func(rec *MergedRecord) { rec.High = "90.5"; rec.Close = "90.2" }),
	}
	for _, rec := range Normalize(rows) {
		require.GreaterOrEqual(t, rec.CloseRatio, 0.0)
		require.LessOrEqual(t, rec.CloseRatio, 1.0)
		require.GreaterOrEqual(t, rec.Spread, 0.0)
	}
}
