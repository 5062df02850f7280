package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Recorder observes a run. Recorder errors are logged by the driver and never
// affect the run.
type Recorder interface {
	RunStarted(ctx context.Context, runID uuid.UUID, startedAt time.Time) error
	ItemProcessed(ctx context.Context, runID uuid.UUID, outcome Outcome) error
	CycleCompleted(ctx context.Context, runID uuid.UUID, step int) error
	RunHalted(ctx context.Context, result *Result) error
}

// Recorders fans every event out to each recorder in order.
type Recorders []Recorder

func (rs Recorders) RunStarted(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	var errs []error
	for _, r := range rs {
		errs = append(errs, r.RunStarted(ctx, runID, startedAt))
	}
	return errors.Join(errs...)
}

func (rs Recorders) ItemProcessed(ctx context.Context, runID uuid.UUID, outcome Outcome) error {
	var errs []error
	for _, r := range rs {
		errs = append(errs, r.ItemProcessed(ctx, runID, outcome))
	}
	return errors.Join(errs...)
}

func (rs Recorders) CycleCompleted(ctx context.Context, runID uuid.UUID, step int) error {
	var errs []error
	for _, r := range rs {
		errs = append(errs, r.CycleCompleted(ctx, runID, step))
	}
	return errors.Join(errs...)
}

func (rs Recorders) RunHalted(ctx context.Context, result *Result) error {
	var errs []error
	for _, r := range rs {
		errs = append(errs, r.RunHalted(ctx, result))
	}
	return errors.Join(errs...)
}
