// Package progress defines the event stream emitted by the fetch pipeline.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart Stage = "RUN_START"
	StageTaskDone Stage = "TASK_DONE"
	StageRunDone  Stage = "RUN_DONE"
	StageRunError Stage = "RUN_ERROR"
)

// Event captures a single milestone of batch progress.
type Event struct {
	// RunID uniquely identifies one pipeline run.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle milestone occurred.
	Stage Stage
	// Slug scopes task events to their originating catalog entry.
	Slug string
	// Completed is the monotonically increasing completed-task count.
	Completed int
	// Total is the number of tasks in the batch.
	Total int
	// Rows carries the record count for task completions and the final
	// table size for run completions.
	Rows int
	// Failed marks a task that contributed nothing.
	Failed bool
	// Dur captures execution latency for tasks and whole runs.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError:
	case StageTaskDone:
		if e.Slug == "" {
			return errors.New("task done requires slug")
		}
		if e.Completed < 1 || (e.Total > 0 && e.Completed > e.Total) {
			return fmt.Errorf("completed count %d outside [1, %d]", e.Completed, e.Total)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
