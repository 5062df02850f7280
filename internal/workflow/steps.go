package workflow

import (
	"context"
	"fmt"
	"slices"

	"github.com/JaimeStill/filer/internal/classifier"
)

// Pick selects the head of the pending queue as the current item. The
// listing is fetched on the first pick of an unlisted state and never again.
// An empty queue clears the current item, which signals the driver to halt.
// Listing faults leave the queue empty.
func Pick(ctx context.Context, rt *Runtime, s *State) (res StepResult) {
	res.State = s
	defer func() {
		if r := recover(); r != nil {
			s.Listed = true
			s.Pending = nil
			s.CurrentItem = ""
			res.Fault = panicFault(StepPick, "", r)
		}
	}()

	if !s.Listed {
		if f := load(ctx, rt, s); f != nil {
			res.Fault = f
		}
	}

	if len(s.Pending) == 0 {
		rt.logger().InfoContext(ctx, "no more items to process")
		s.CurrentItem = ""
		return res
	}

	s.CurrentItem = s.Pending[0]
	return res
}

func load(ctx context.Context, rt *Runtime, s *State) *Fault {
	rt.logger().InfoContext(ctx, "initializing pending items from storage")

	items, err := rt.Storage.List(ctx)
	s.Listed = true
	if err != nil {
		s.Pending = nil
		s.CurrentItem = ""
		return &Fault{Step: StepPick, Err: fmt.Errorf("%w: %w", ErrListFailed, err)}
	}

	s.Pending = slices.Clone(items)
	return nil
}

// Classify asks the classifier for the current item's category. It is a
// no-op when no item is selected. Classifier faults assign the fallback
// category so the item can still be relocated.
func Classify(ctx context.Context, rt *Runtime, s *State) (res StepResult) {
	res.State = s
	item := s.CurrentItem
	if item == "" {
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			s.CurrentCategory = rt.fallback()
			res.Fault = panicFault(StepClassify, item, r)
		}
	}()

	req := classifier.NewRequest(item, rt.Categories)
	raw, err := rt.Classifier.Classify(ctx, req)
	if err != nil {
		s.CurrentCategory = rt.fallback()
		res.Fault = &Fault{
			Step: StepClassify,
			Item: item,
			Err:  fmt.Errorf("%w: %w", ErrClassifyFailed, err),
		}
		return res
	}

	s.CurrentCategory = NormalizeLabel(raw, rt.fallback())
	return res
}

// Relocate moves the current item into its category namespace. It is a no-op
// when no item is selected. The item leaves the pending queue whether or not
// the move succeeded; failed items are reported and never retried.
func Relocate(ctx context.Context, rt *Runtime, s *State) (res StepResult) {
	res.State = s
	item := s.CurrentItem
	if item == "" {
		return res
	}

	category := s.CurrentCategory
	outcome := &Outcome{Item: item, Category: category}
	res.Outcome = outcome

	defer func() {
		if r := recover(); r != nil {
			res.Fault = panicFault(StepRelocate, item, r)
			outcome.Moved = false
			outcome.Error = res.Fault.Err.Error()
		}
		s.evict(item)
		rt.logger().InfoContext(ctx, "items remaining", "count", len(s.Pending))
	}()

	rt.logger().InfoContext(ctx, "moving item", "item", item, "category", category)

	dest, err := rt.Storage.Move(ctx, item, category)
	if err != nil {
		res.Fault = &Fault{
			Step: StepRelocate,
			Item: item,
			Err:  fmt.Errorf("%w: %w", ErrRelocateFailed, err),
		}
		outcome.Error = err.Error()
		return res
	}

	outcome.Destination = dest
	outcome.Moved = true
	return res
}

// Advance completes a cycle by incrementing the step counter. The counter
// always ends at its previous value plus one.
func Advance(ctx context.Context, rt *Runtime, s *State) (res StepResult) {
	res.State = s
	last := s.StepCount

	defer func() {
		if r := recover(); r != nil {
			s.StepCount = last + 1
			res.Fault = panicFault(StepAdvance, "", r)
		}
	}()

	s.StepCount = last + 1
	rt.logger().InfoContext(ctx, "step completed", "step", s.StepCount)
	return res
}

func panicFault(step Step, item string, r any) *Fault {
	return &Fault{
		Step: step,
		Item: item,
		Err:  fmt.Errorf("%w: %v", ErrStepPanic, r),
	}
}
