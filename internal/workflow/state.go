package workflow

import "slices"

// State is the mutable record threaded through every step of a run.
// It is created once per run, mutated in place and never persisted.
type State struct {
	// Pending holds the items still to process in listing order.
	Pending []string `json:"pending"`
	// Listed reports whether Pending was populated from the storage listing.
	// An unlisted state fetches the listing on the next pick.
	Listed bool `json:"listed"`
	// CurrentItem is the item in flight this cycle; empty means none.
	CurrentItem string `json:"current_item,omitempty"`
	// CurrentCategory is the label assigned to CurrentItem; empty means none.
	CurrentCategory string `json:"current_category,omitempty"`
	// StepCount is the number of completed cycles.
	StepCount int `json:"step_count"`
}

// NewState returns a state whose pending queue is already listed.
func NewState(pending []string) *State {
	return &State{
		Pending: slices.Clone(pending),
		Listed:  true,
	}
}

// Exhausted reports whether a listed state has no pending items.
func (s *State) Exhausted() bool {
	return s.Listed && len(s.Pending) == 0
}

func (s *State) evict(item string) {
	s.Pending = slices.DeleteFunc(s.Pending, func(p string) bool {
		return p == item
	})
}
