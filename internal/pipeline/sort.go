package pipeline

import "sort"

// Finalize returns the records sorted ascending by (rank, date). The sort
// is stable: rows with an identical key keep their pre-sort relative order.
// The input slice is not modified.
func Finalize(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
