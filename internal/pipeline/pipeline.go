package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coinhist/coin-history-crawler/internal/catalog"
	"github.com/coinhist/coin-history-crawler/internal/metrics"
	"github.com/coinhist/coin-history-crawler/internal/progress"
)

// Pipeline wires the catalog loader, dispatcher, merger, normalizer and
// sorter into one run. The final sorted table is its sole artifact; nothing
// persists across runs.
type Pipeline struct {
	loader     catalog.Loader
	dispatcher *Dispatcher
	clock      Clock
	emitter    progress.Emitter
	logger     *zap.Logger
}

// New constructs a Pipeline.
func New(
	loader catalog.Loader,
	dispatcher *Dispatcher,
	clock Clock,
	emitter progress.Emitter,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		loader:     loader,
		dispatcher: dispatcher,
		clock:      clock,
		emitter:    emitter,
		logger:     logger,
	}
}

// Run executes one full batch: load catalog, fan out fetch tasks, merge,
// normalize, sort. It returns ErrNoData (wrapped) when zero usable records
// survive; per-task failures never abort the run.
func (p *Pipeline) Run(ctx context.Context, filter catalog.Filter, observe Observer) ([]Record, error) {
	runID := uuid.New()
	start := p.clock.Now()
	logger := p.logger.With(zap.String("run_id", runID.String()))

	entries, err := p.loader.Load(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("entries", len(entries)))

	p.emit(progress.Event{
		RunID: runID,
		TS:    start,
		Stage: progress.StageRunStart,
		Total: len(entries),
	})

	outcomes := p.dispatcher.RunBatch(ctx, runID, entries, observe)

	table, err := p.assemble(outcomes, entries)
	dur := p.clock.Now().Sub(start)
	metrics.ObserveBatchDuration(dur)
	if err != nil {
		p.emit(progress.Event{
			RunID: runID,
			TS:    p.clock.Now(),
			Stage: progress.StageRunError,
			Total: len(entries),
			Dur:   dur,
			Note:  err.Error(),
		})
		return nil, err
	}

	p.emit(progress.Event{
		RunID: runID,
		TS:    p.clock.Now(),
		Stage: progress.StageRunDone,
		Total: len(entries),
		Rows:  len(table),
		Dur:   dur,
	})
	logger.Info("batch complete",
		zap.Int("tasks", len(entries)),
		zap.Int("failed", countFailed(outcomes)),
		zap.Int("rows", len(table)),
		zap.Duration("dur", dur),
	)
	return table, nil
}

func (p *Pipeline) assemble(outcomes []Outcome, entries []catalog.Entry) ([]Record, error) {
	merged, err := Merge(outcomes, entries)
	if err != nil {
		return nil, err
	}
	normalized := Normalize(merged)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("normalize records: %w", ErrNoData)
	}
	return Finalize(normalized), nil
}

func (p *Pipeline) emit(evt progress.Event) {
	if p.emitter != nil {
		p.emitter.Emit(evt)
	}
}

func countFailed(outcomes []Outcome) int {
	n := 0
	for _, outcome := range outcomes {
		if outcome.Failed {
			n++
		}
	}
	return n
}
