package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// run accumulates fault records and outcomes for a single Driver.Run.
type run struct {
	driver *Driver
	result *Result
	logger *slog.Logger
}

func (r *run) node(step Step, fn stepFunc) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, st state.State) (state.State, error) {
		if err := ctx.Err(); err != nil {
			return st, fmt.Errorf("%s: %w", step, err)
		}

		s, err := extractState(st)
		if err != nil {
			return st, fmt.Errorf("%s: %w", step, err)
		}

		r.record(ctx, step, fn(ctx, r.driver.rt, s))
		return st.Set(KeyState, s), nil
	})
}

func (r *run) record(ctx context.Context, step Step, res StepResult) {
	if res.Fault != nil {
		r.fault(ctx, res.Fault)
	}

	if res.Outcome != nil {
		o := *res.Outcome
		r.result.Outcomes = append(r.result.Outcomes, o)
		r.notify(ctx, func(rec Recorder) error {
			return rec.ItemProcessed(ctx, r.result.RunID, o)
		})
	}

	if step == StepAdvance {
		count := res.State.StepCount
		r.notify(ctx, func(rec Recorder) error {
			return rec.CycleCompleted(ctx, r.result.RunID, count)
		})
	}
}

func (r *run) fault(ctx context.Context, f *Fault) {
	r.result.Faults = append(r.result.Faults, *f)
	r.logger.WarnContext(ctx, "step fault recovered",
		"step", f.Step,
		"item", f.Item,
		"error", f.Err,
	)
}

// notify delivers an event to the runtime recorder. Recorder failures are
// logged and otherwise ignored.
func (r *run) notify(ctx context.Context, fn func(Recorder) error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "recorder panicked", "panic", p)
		}
	}()

	if err := fn(r.driver.rt.recorder()); err != nil {
		r.logger.WarnContext(ctx, "recorder failed", "error", err)
	}
}

func (r *run) halt(ctx context.Context, s *State) {
	res := r.result
	res.Reason = haltReason(s, r.driver.maxSteps)
	res.Steps = s.StepCount
	res.Remaining = slices.Clone(s.Pending)
	res.CompletedAt = time.Now()

	attrs := []any{
		"reason", res.Reason,
		"steps", res.Steps,
		"moved", res.Moved(),
		"failed", res.Failed(),
		"remaining", len(res.Remaining),
		"faults", len(res.Faults),
	}

	if res.Reason == HaltBudget {
		r.logger.WarnContext(ctx, "step budget exhausted", attrs...)
	} else {
		r.logger.InfoContext(ctx, "pending items exhausted", attrs...)
	}

	r.notify(ctx, func(rec Recorder) error {
		return rec.RunHalted(ctx, res)
	})
}

func haltReason(s *State, maxSteps int) HaltReason {
	if len(s.Pending) > 0 && s.StepCount >= maxSteps {
		return HaltBudget
	}
	return HaltExhausted
}
