// Package metrics exposes Prometheus collectors for the pipeline internals.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsMerged        prometheus.Counter
	recordsUnmatched     prometheus.Counter
	rowsNormalized       prometheus.Counter
	rowsDropped          *prometheus.CounterVec
	batchDurationSeconds prometheus.Histogram

	once sync.Once
)

// Drop reasons recorded by the normalizer.
const (
	DropReasonDate     = "date"
	DropReasonPrice    = "price"
	DropReasonQuantity = "quantity"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		recordsMerged = promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinhist_records_merged_total",
			Help: "Raw records successfully joined to a catalog entry.",
		})
		recordsUnmatched = promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinhist_records_unmatched_total",
			Help: "Raw records dropped because their slug was not in the catalog.",
		})
		rowsNormalized = promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinhist_rows_normalized_total",
			Help: "Rows that survived normalization.",
		})
		rowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinhist_rows_dropped_total",
			Help: "Rows dropped during normalization, labeled by reason.",
		}, []string{"reason"})
		batchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinhist_batch_duration_seconds",
			Help:    "Wall time of the whole fetch batch.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		})
	})
}

// RecordMerged counts records that joined successfully.
func RecordMerged(n int) {
	if recordsMerged != nil {
		recordsMerged.Add(float64(n))
	}
}

// RecordUnmatched counts records dropped at the join.
func RecordUnmatched(n int) {
	if recordsUnmatched != nil {
		recordsUnmatched.Add(float64(n))
	}
}

// RecordNormalized counts rows that survived normalization.
func RecordNormalized(n int) {
	if rowsNormalized != nil {
		rowsNormalized.Add(float64(n))
	}
}

// RecordDropped counts a dropped row by reason.
func RecordDropped(reason string) {
	if rowsDropped != nil {
		rowsDropped.WithLabelValues(reason).Inc()
	}
}

// ObserveBatchDuration records the wall time of one batch.
func ObserveBatchDuration(d time.Duration) {
	if batchDurationSeconds != nil {
		batchDurationSeconds.Observe(d.Seconds())
	}
}
