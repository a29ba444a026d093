package pipeline

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinhist/coin-history-crawler/internal/metrics"
)

// dateLayout fixes date parsing to English month names regardless of host
// locale; Go reference layouts are locale-independent, so no environment
// state needs scoping.
const dateLayout = "Jan 2, 2006"

// placeholder marks a missing value in the source tables.
const placeholder = "-"

// Normalize coerces merged records into typed rows and computes the derived
// metrics. It is a pure function over its input: rows with an unparseable
// date or price field are dropped, never partial, and re-running it on the
// same input yields the same output.
func Normalize(records []MergedRecord) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		normalized, ok := normalizeOne(rec)
		if !ok {
			continue
		}
		out = append(out, normalized)
	}
	metrics.RecordNormalized(len(out))
	return out
}

func normalizeOne(rec MergedRecord) (Record, bool) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(rec.Date))
	if err != nil {
		metrics.RecordDropped(metrics.DropReasonDate)
		return Record{}, false
	}

	// Open/high/low/close are never placeholder-substituted; a missing
	// price invalidates the whole row.
	open, err := parsePrice(rec.Open)
	if err != nil {
		metrics.RecordDropped(metrics.DropReasonPrice)
		return Record{}, false
	}
	high, err := parsePrice(rec.High)
	if err != nil {
		metrics.RecordDropped(metrics.DropReasonPrice)
		return Record{}, false
	}
	low, err := parsePrice(rec.Low)
	if err != nil {
		metrics.RecordDropped(metrics.DropReasonPrice)
		return Record{}, false
	}
	closePx, err := parsePrice(rec.Close)
	if err != nil {
		metrics.RecordDropped(metrics.DropReasonPrice)
		return Record{}, false
	}

	volume, err := parseQuantity(rec.Volume)
	if err != nil {
		metrics.RecordDropped(metrics.DropReasonQuantity)
		return Record{}, false
	}
	market, err := parseQuantity(rec.MarketCap)
	if err != nil {
		metrics.RecordDropped(metrics.DropReasonQuantity)
		return Record{}, false
	}

	closeRatio := decimal.Zero
	if spread := high.Sub(low); !spread.IsZero() {
		closeRatio = closePx.Sub(low).Div(spread).Round(4)
	}
	spread := high.Sub(low).Round(2)

	return Record{
		Slug:       rec.Slug,
		Symbol:     rec.Symbol,
		Name:       rec.Name,
		Date:       date,
		Rank:       rec.Rank,
		Open:       open.InexactFloat64(),
		High:       high.InexactFloat64(),
		Low:        low.InexactFloat64(),
		Close:      closePx.InexactFloat64(),
		Volume:     volume.InexactFloat64(),
		MarketCap:  market.InexactFloat64(),
		CloseRatio: closeRatio.InexactFloat64(),
		Spread:     spread.InexactFloat64(),
	}, true
}

// stripSeparators removes thousands separators from a numeric field.
func stripSeparators(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// parsePrice coerces an OHLC field. Placeholders are not substituted here.
func parsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(stripSeparators(s))
}

// parseQuantity coerces a volume/market field, treating the placeholder and
// empty text as zero.
func parseQuantity(s string) (decimal.Decimal, error) {
	cleaned := stripSeparators(s)
	if cleaned == "" || cleaned == placeholder {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}
