package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coinhist/coin-history-crawler/internal/catalog"
	"github.com/coinhist/coin-history-crawler/internal/progress"
)

// Dispatcher fans fetch+parse tasks out over a bounded worker pool. Every
// entry maps to exactly one task; failing tasks contribute zero records and
// never abort the batch.
type Dispatcher struct {
	fetcher     HistoryFetcher
	concurrency int
	clock       Clock
	emitter     progress.Emitter
	logger      *zap.Logger
}

// NewDispatcher constructs a Dispatcher. Concurrency below 1 is clamped
// to 1.
func NewDispatcher(
	fetcher HistoryFetcher,
	concurrency int,
	clock Clock,
	emitter progress.Emitter,
	logger *zap.Logger,
) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		fetcher:     fetcher,
		concurrency: concurrency,
		clock:       clock,
		emitter:     emitter,
		logger:      logger,
	}
}

// RunBatch executes one fetch task per entry with at most the configured
// concurrency in flight. It blocks until every task has produced a result
// or failed; there is no mid-batch cancellation beyond ctx reaching the
// fetcher. The observer, if non-nil, is invoked once per completion with
// the completed-task count so far.
func (d *Dispatcher) RunBatch(
	ctx context.Context,
	runID uuid.UUID,
	entries []catalog.Entry,
	observe Observer,
) []Outcome {
	total := len(entries)
	if total == 0 {
		return nil
	}
	if d.concurrency == 1 {
		return d.runSequential(ctx, runID, entries, observe)
	}
	return d.runParallel(ctx, runID, entries, observe)
}

// runSequential is the degraded single-flight path: no pool machinery, no
// goroutines beyond the caller.
func (d *Dispatcher) runSequential(
	ctx context.Context,
	runID uuid.UUID,
	entries []catalog.Entry,
	observe Observer,
) []Outcome {
	outcomes := make([]Outcome, 0, len(entries))
	for i, entry := range entries {
		outcome, dur := d.runTask(ctx, entry)
		outcomes = append(outcomes, outcome)
		d.noteCompletion(runID, outcome, dur, i+1, len(entries), observe)
	}
	return outcomes
}

func (d *Dispatcher) runParallel(
	ctx context.Context,
	runID uuid.UUID,
	entries []catalog.Entry,
	observe Observer,
) []Outcome {
	total := len(entries)
	jobs := make(chan catalog.Entry)
	results := make(chan timedOutcome)

	var wg sync.WaitGroup
	workers := d.concurrency
	if workers > total {
		workers = total
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				outcome, dur := d.runTask(ctx, entry)
				results <- timedOutcome{outcome: outcome, dur: dur}
			}
		}()
	}

	go func() {
		for _, entry := range entries {
			jobs <- entry
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// Single collector: completion counting and observer calls are funneled
	// through this loop so the counter has one writer.
	outcomes := make([]Outcome, 0, total)
	completed := 0
	for res := range results {
		outcomes = append(outcomes, res.outcome)
		completed++
		d.noteCompletion(runID, res.outcome, res.dur, completed, total, observe)
	}
	return outcomes
}

type timedOutcome struct {
	outcome Outcome
	dur     time.Duration
}

// runTask executes one fetch+parse task. Any error collapses into a failure
// marker; the reason is logged, not propagated.
func (d *Dispatcher) runTask(ctx context.Context, entry catalog.Entry) (Outcome, time.Duration) {
	start := d.clock.Now()
	records, err := d.fetcher.FetchHistory(ctx, entry.SourceLocation, entry.Slug)
	dur := d.clock.Now().Sub(start)
	if err != nil {
		d.logger.Warn("fetch task failed",
			zap.String("slug", entry.Slug),
			zap.String("source", entry.SourceLocation),
			zap.Error(err),
		)
		return Outcome{Slug: entry.Slug, Failed: true}, dur
	}
	return Outcome{Slug: entry.Slug, Records: records}, dur
}

func (d *Dispatcher) noteCompletion(
	runID uuid.UUID,
	outcome Outcome,
	dur time.Duration,
	completed, total int,
	observe Observer,
) {
	if observe != nil {
		observe(completed, total)
	}
	if d.emitter != nil {
		d.emitter.Emit(progress.Event{
			RunID:     runID,
			TS:        d.clock.Now(),
			Stage:     progress.StageTaskDone,
			Slug:      outcome.Slug,
			Completed: completed,
			Total:     total,
			Rows:      len(outcome.Records),
			Failed:    outcome.Failed,
			Dur:       dur,
		})
	}
}
