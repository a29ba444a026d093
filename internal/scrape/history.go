// Package scrape implements pipeline.HistoryFetcher using gocolly.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/coinhist/coin-history-crawler/internal/pipeline"
)

// historyColumns is the cell count of one daily row: date, open, high, low,
// close, volume, market cap.
const historyColumns = 7

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// HistoryFetcher scrapes one entity's historical-data table.
type HistoryFetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a HistoryFetcher.
func New(cfg Config) *HistoryFetcher {
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c.SetRequestTimeout(cfg.Timeout)
	return &HistoryFetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// FetchHistory retrieves the page at sourceLocation and parses its history
// table into raw records carrying the given slug.
func (f *HistoryFetcher) FetchHistory(
	ctx context.Context,
	sourceLocation string,
	slug string,
) ([]pipeline.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	var records []pipeline.RawRecord
	collector := f.baseCollector.Clone()
	collector.OnHTML("table tbody tr", func(row *colly.HTMLElement) {
		record, ok := parseHistoryRow(row, slug)
		if !ok {
			return
		}
		records = append(records, record)
	})

	var fetchErr error
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(sourceLocation); err != nil {
		return nil, fmt.Errorf("visit %s: %w", sourceLocation, err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", sourceLocation, fetchErr)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no history rows at %s", sourceLocation)
	}
	return records, nil
}

// parseHistoryRow maps one table row onto named fields. Rows without the
// expected cell count are skipped; field cleaning is the normalizer's job.
func parseHistoryRow(row *colly.HTMLElement, slug string) (pipeline.RawRecord, bool) {
	cells := row.ChildTexts("td")
	if len(cells) < historyColumns {
		return pipeline.RawRecord{}, false
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return pipeline.RawRecord{
		Slug:      slug,
		Date:      cells[0],
		Open:      cells[1],
		High:      cells[2],
		Low:       cells[3],
		Close:     cells[4],
		Volume:    cells[5],
		MarketCap: cells[6],
	}, true
}
