// Package export writes the final table to output glue formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/coinhist/coin-history-crawler/internal/pipeline"
)

// header is the exact output column order of the normalized table.
var header = []string{
	"slug", "symbol", "name", "date", "rank",
	"open", "high", "low", "close", "volume", "market",
	"close_ratio", "spread",
}

// WriteCSV renders the normalized table as CSV in the contract column
// order. It does not reorder or re-sort rows.
func WriteCSV(w io.Writer, records []pipeline.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Slug,
			rec.Symbol,
			rec.Name,
			rec.Date.Format("2006-01-02"),
			strconv.Itoa(rec.Rank),
			formatFloat(rec.Open),
			formatFloat(rec.High),
			formatFloat(rec.Low),
			formatFloat(rec.Close),
			formatFloat(rec.Volume),
			formatFloat(rec.MarketCap),
			formatFloat(rec.CloseRatio),
			formatFloat(rec.Spread),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
