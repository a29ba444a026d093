package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coinhist/coin-history-crawler/internal/progress"
)

func TestLogSinkLogsTaskFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	evt := progress.Event{
		RunID:     uuid.New(),
		TS:        time.Now(),
		Stage:     progress.StageTaskDone,
		Slug:      "bitcoin",
		Completed: 1,
		Total:     5,
		Rows:      30,
		Dur:       50 * time.Millisecond,
	}
	require.NoError(t, sink.Consume(context.Background(), evt))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, string(progress.StageTaskDone), fields["stage"])
	require.Equal(t, "bitcoin", fields["slug"])
	require.EqualValues(t, 1, fields["completed"])
	require.EqualValues(t, 5, fields["total"])
}

func TestLogSinkNilLoggerIsSafe(t *testing.T) {
	t.Parallel()

	sink := NewLogSink(nil)
	evt := progress.Event{RunID: uuid.New(), TS: time.Now(), Stage: progress.StageRunStart}
	require.NoError(t, sink.Consume(context.Background(), evt))
	require.NoError(t, sink.Close(context.Background()))
}
