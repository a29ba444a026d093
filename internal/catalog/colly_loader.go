package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/spf13/cast"
)

// windowLayout is the query format the history pages expect.
const windowLayout = "20060102"

// ListingConfig controls listing collector behavior.
type ListingConfig struct {
	ListingURL string
	UserAgent  string
	Timeout    time.Duration
}

// ListingLoader scrapes the entity listing table and implements Loader.
type ListingLoader struct {
	cfg           ListingConfig
	baseCollector *colly.Collector
}

// NewListingLoader builds a ListingLoader.
func NewListingLoader(cfg ListingConfig) *ListingLoader {
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c.SetRequestTimeout(cfg.Timeout)
	return &ListingLoader{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Load scrapes the listing table and returns the filtered, rank-ordered
// catalog. A filter matching nothing yields an empty, non-error result.
func (l *ListingLoader) Load(ctx context.Context, filter Filter) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	base, err := url.Parse(l.cfg.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	var entries []Entry
	collector := l.baseCollector.Clone()
	collector.OnHTML("table tbody tr", func(row *colly.HTMLElement) {
		entry, ok := parseListingRow(row)
		if !ok {
			return
		}
		entry.SourceLocation = historyURL(base, entry.Slug, filter.Start, filter.End)
		entries = append(entries, entry)
	})

	var fetchErr error
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(l.cfg.ListingURL); err != nil {
		return nil, fmt.Errorf("visit listing: %w", err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch listing: %w", fetchErr)
	}

	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("listing row: %w", err)
		}
	}
	return Select(entries, filter), nil
}

// parseListingRow extracts one catalog entry from a listing table row.
// Rows without the expected rank/name/symbol cells or a currency link are
// skipped (header rows, ads, layout rows).
func parseListingRow(row *colly.HTMLElement) (Entry, bool) {
	cells := row.ChildTexts("td")
	if len(cells) < 3 {
		return Entry{}, false
	}
	rank, err := cast.ToIntE(strings.TrimSpace(cells[0]))
	if err != nil || rank < 1 {
		return Entry{}, false
	}
	slug := slugFromHref(row.ChildAttr("a[href]", "href"))
	if slug == "" {
		return Entry{}, false
	}
	return Entry{
		Symbol: strings.TrimSpace(cells[2]),
		Name:   strings.TrimSpace(cells[1]),
		Rank:   rank,
		Slug:   slug,
	}, true
}

// slugFromHref pulls the slug out of a /currencies/<slug>/ link.
func slugFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "currencies" && i+1 < len(parts) {
			return strings.ToLower(parts[i+1])
		}
	}
	return ""
}

// historyURL builds the per-entity historical-data location, bounding the
// window only when the caller configured bounds.
func historyURL(base *url.URL, slug string, start, end time.Time) string {
	loc := url.URL{
		Scheme: base.Scheme,
		Host:   base.Host,
		Path:   fmt.Sprintf("/currencies/%s/historical-data/", slug),
	}
	query := url.Values{}
	if !start.IsZero() {
		query.Set("start", start.Format(windowLayout))
	}
	if !end.IsZero() {
		query.Set("end", end.Format(windowLayout))
	}
	loc.RawQuery = query.Encode()
	return loc.String()
}
