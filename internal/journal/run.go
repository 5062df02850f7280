package journal

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusHalted  = "halted"
)

// Run is the journal record of one workflow run. A run left in
// StatusRunning was interrupted before it halted.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason"`
	Steps       int        `json:"steps"`
	Moved       int        `json:"moved"`
	Failed      int        `json:"failed"`
	Remaining   int        `json:"remaining"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Duration returns the wall time of a halted run, or zero while it runs.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Outcome is the journal record of one relocation attempt.
type Outcome struct {
	ID          uuid.UUID `json:"id"`
	RunID       uuid.UUID `json:"run_id"`
	Item        string    `json:"item"`
	Category    string    `json:"category"`
	Destination string    `json:"destination,omitempty"`
	Moved       bool      `json:"moved"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}
