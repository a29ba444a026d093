package pipeline

import (
	"fmt"

	"github.com/coinhist/coin-history-crawler/internal/catalog"
	"github.com/coinhist/coin-history-crawler/internal/metrics"
)

// Merge flattens the successful outcomes and inner-joins each raw record to
// its catalog entry by slug. Records whose slug is not in the catalog are
// dropped silently; the catalog and the fetch source may disagree
// transiently. Zero surviving records is fatal: the batch fetched nothing
// usable.
func Merge(outcomes []Outcome, entries []catalog.Entry) ([]MergedRecord, error) {
	index := make(map[string]catalog.Entry, len(entries))
	for _, entry := range entries {
		index[entry.Slug] = entry
	}

	var merged []MergedRecord
	unmatched := 0
	for _, outcome := range outcomes {
		if outcome.Failed {
			continue
		}
		for _, raw := range outcome.Records {
			entry, ok := index[raw.Slug]
			if !ok {
				unmatched++
				continue
			}
			merged = append(merged, MergedRecord{
				RawRecord: raw,
				Symbol:    entry.Symbol,
				Name:      entry.Name,
				Rank:      entry.Rank,
			})
		}
	}

	metrics.RecordMerged(len(merged))
	metrics.RecordUnmatched(unmatched)

	if len(merged) == 0 {
		return nil, fmt.Errorf("merge outcomes: %w", ErrNoData)
	}
	return merged, nil
}
