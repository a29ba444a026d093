// Package catalog defines the tracked-entity catalog and its loaders.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry describes one tracked entity: identifying metadata plus the
// location its daily history is fetched from. Entries are immutable once
// loaded.
type Entry struct {
	Symbol         string
	Name           string
	Rank           int
	Slug           string
	SourceLocation string
}

// Filter selects which catalog entries a run covers.
type Filter struct {
	// Slugs restricts the catalog to the named entities. Empty means all.
	Slugs []string
	// Limit truncates the catalog to the first N entries after filtering.
	// Zero means no truncation.
	Limit int
	// Start and End bound the history window requested per entity. Zero
	// values leave the corresponding bound open.
	Start time.Time
	End   time.Time
}

// ParseSelection converts the CLI/config filter string into a slug set.
// "all" (or empty) selects the whole catalog; otherwise the string is a
// comma-separated list of slugs.
func ParseSelection(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil
	}
	parts := strings.Split(s, ",")
	slugs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			slugs = append(slugs, p)
		}
	}
	return slugs
}

// Loader yields catalog entries in rank order.
type Loader interface {
	Load(ctx context.Context, filter Filter) ([]Entry, error)
}

// Select applies slug filtering, rank ordering, and truncation to a raw
// entry list. An empty result is a valid outcome, not an error.
func Select(entries []Entry, filter Filter) []Entry {
	selected := make([]Entry, 0, len(entries))
	if len(filter.Slugs) == 0 {
		selected = append(selected, entries...)
	} else {
		wanted := make(map[string]struct{}, len(filter.Slugs))
		for _, slug := range filter.Slugs {
			wanted[slug] = struct{}{}
		}
		for _, entry := range entries {
			if _, ok := wanted[entry.Slug]; ok {
				selected = append(selected, entry)
			}
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Rank < selected[j].Rank
	})

	if filter.Limit > 0 && len(selected) > filter.Limit {
		selected = selected[:filter.Limit]
	}
	return selected
}

// Validate rejects entries a loader should never emit.
func (e Entry) Validate() error {
	if e.Slug == "" {
		return fmt.Errorf("entry has no slug")
	}
	if e.Rank < 1 {
		return fmt.Errorf("entry %q has rank %d, want >= 1", e.Slug, e.Rank)
	}
	if e.SourceLocation == "" {
		return fmt.Errorf("entry %q has no source location", e.Slug)
	}
	return nil
}
