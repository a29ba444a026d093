package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInitAndRecord(t *testing.T) {
	Init()
	Init() // idempotent

	RecordMerged(3)
	RecordUnmatched(1)
	RecordNormalized(2)
	RecordDropped(DropReasonPrice)
	RecordDropped(DropReasonPrice)
	RecordDropped(DropReasonDate)
	ObserveBatchDuration(2 * time.Second)

	require.GreaterOrEqual(t, testutil.ToFloat64(recordsMerged), 3.0)
	require.GreaterOrEqual(t, testutil.ToFloat64(recordsUnmatched), 1.0)
	require.GreaterOrEqual(t, testutil.ToFloat64(rowsNormalized), 2.0)
	require.GreaterOrEqual(t, testutil.ToFloat64(rowsDropped.WithLabelValues(DropReasonPrice)), 2.0)
	require.GreaterOrEqual(t, testutil.ToFloat64(rowsDropped.WithLabelValues(DropReasonDate)), 1.0)
	require.GreaterOrEqual(t, testutil.CollectAndCount(batchDurationSeconds), 1)
}
