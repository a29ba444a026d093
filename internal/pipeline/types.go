// Package pipeline implements the concurrent fetch and normalization core:
// it fans fetch tasks out over the catalog, joins the survivors back to
// catalog metadata, and normalizes the scraped text into typed daily records.
package pipeline

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned when a run produced zero usable records. Callers
// check it with errors.Is; a run never returns an empty table silently.
var ErrNoData = errors.New("no usable records fetched")

// RawRecord is one scraped history row for one entity, exactly as it
// appears in the source table. All fields are untyped text; the normalizer
// owns coercion.
type RawRecord struct {
	Slug      string
	Date      string
	Open      string
	High      string
	Low       string
	Close     string
	Volume    string
	MarketCap string
}

// Outcome is the tagged per-task result: the records a task scraped, or a
// failure marker. Failure reasons are not carried; the batch-level policy
// is tolerance, not diagnosis.
type Outcome struct {
	Slug    string
	Records []RawRecord
	Failed  bool
}

// MergedRecord is a RawRecord joined with its catalog entry's identity
// metadata.
type MergedRecord struct {
	RawRecord
	Symbol string
	Name   string
	Rank   int
}

// Record is the final normalized unit: typed fields plus the derived
// close-ratio and spread metrics.
type Record struct {
	Slug       string
	Symbol     string
	Name       string
	Date       time.Time
	Rank       int
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	MarketCap  float64
	CloseRatio float64
	Spread     float64
}

// HistoryFetcher retrieves and parses the full daily history table for one
// entity. Implementations live outside this package; the pipeline treats
// any error identically (zero records contributed, batch continues).
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, sourceLocation, slug string) ([]RawRecord, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Observer receives the completed-task count after each task finishes.
// Counts are monotonically increasing in [1, total].
type Observer func(completed, total int)
