// Package sinks provides progress.Sink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/coinhist/coin-history-crawler/internal/progress"
)

// LogSink emits structured logs for progress streams. It is the default
// user-visible progress indication during a batch.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(_ context.Context, evt progress.Event) error {
	fields := []zap.Field{
		zap.String("run_id", evt.RunID.String()),
		zap.String("stage", string(evt.Stage)),
	}
	switch evt.Stage {
	case progress.StageTaskDone:
		fields = append(fields,
			zap.String("slug", evt.Slug),
			zap.Int("completed", evt.Completed),
			zap.Int("total", evt.Total),
			zap.Int("rows", evt.Rows),
			zap.Bool("failed", evt.Failed),
			zap.Duration("dur", evt.Dur),
		)
	case progress.StageRunDone:
		fields = append(fields,
			zap.Int("total", evt.Total),
			zap.Int("rows", evt.Rows),
			zap.Duration("dur", evt.Dur),
		)
	case progress.StageRunError:
		fields = append(fields, zap.String("note", evt.Note), zap.Duration("dur", evt.Dur))
	}
	s.logger.Info("progress", fields...)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
