// Package workflow implements the sort loop: a state graph that picks one
// pending item, classifies it, relocates it into its category namespace and
// advances the step counter until the queue is exhausted or the step budget
// is spent. Every step contains its own faults; none escapes to the driver.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrInvalidBudget  = errors.New("step budget must be positive")
	ErrInvalidRuntime = errors.New("invalid runtime")
	ErrListFailed     = errors.New("listing failed")
	ErrClassifyFailed = errors.New("classification failed")
	ErrRelocateFailed = errors.New("relocation failed")
	ErrStepPanic      = errors.New("step panicked")
)
