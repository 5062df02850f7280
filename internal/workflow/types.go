package workflow

import (
	"time"

	"github.com/google/uuid"
)

const KeyState = "sort_state"

// Step names a step function.
type Step string

// Steps of one cycle, in execution order.
const (
	StepPick     Step = "pick"
	StepClassify Step = "classify"
	StepRelocate Step = "relocate"
	StepAdvance  Step = "advance"
)

// HaltReason records why a run stopped.
type HaltReason string

// Halt reasons. A budget halt is a safety ceiling, not a failure.
const (
	HaltExhausted HaltReason = "exhausted"
	HaltBudget    HaltReason = "budget"
)

// Fault records an error a step recovered from.
type Fault struct {
	Step Step   `json:"step"`
	Item string `json:"item,omitempty"`
	Err  error  `json:"-"`
}

func (f Fault) Error() string {
	if f.Item == "" {
		return string(f.Step) + ": " + f.Err.Error()
	}
	return string(f.Step) + " " + f.Item + ": " + f.Err.Error()
}

func (f Fault) Unwrap() error {
	return f.Err
}

// Outcome records the single relocation attempt made for an item.
type Outcome struct {
	Item        string `json:"item"`
	Category    string `json:"category"`
	Destination string `json:"destination,omitempty"`
	Moved       bool   `json:"moved"`
	Error       string `json:"error,omitempty"`
}

// StepResult is returned by every step function. Fault is set when the step
// recovered from an error; Outcome is set by relocate when an item was
// attempted.
type StepResult struct {
	State   *State
	Fault   *Fault
	Outcome *Outcome
}

// Result summarizes a completed run.
type Result struct {
	RunID       uuid.UUID  `json:"run_id"`
	Reason      HaltReason `json:"reason"`
	Steps       int        `json:"steps"`
	Remaining   []string   `json:"remaining"`
	Outcomes    []Outcome  `json:"outcomes"`
	Faults      []Fault    `json:"-"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
}

// Moved returns the number of items relocated successfully.
func (r *Result) Moved() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Moved {
			n++
		}
	}
	return n
}

// Failed returns the number of items evicted after a failed relocation.
func (r *Result) Failed() int {
	return len(r.Outcomes) - r.Moved()
}
