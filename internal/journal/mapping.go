package journal

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/filer/pkg/query"
	"github.com/JaimeStill/filer/pkg/repository"
)

var runProjection = query.
	NewProjectionMap("public", "runs", "r").
	Project("id", "id").
	Project("status", "status").
	Project("reason", "reason").
	Project("steps", "steps").
	Project("moved", "moved").
	Project("failed", "failed").
	Project("remaining", "remaining").
	Project("started_at", "started_at").
	Project("completed_at", "completed_at")

var runDefaultSort = query.SortField{
	Field:      "started_at",
	Descending: true,
}

var outcomeProjection = query.
	NewProjectionMap("public", "outcomes", "o").
	Project("id", "id").
	Project("run_id", "run_id").
	Project("item", "item").
	Project("category", "category").
	Project("destination", "destination").
	Project("moved", "moved").
	Project("error", "error").
	Project("processed_at", "processed_at")

var outcomeDefaultSort = query.SortField{
	Field: "processed_at",
}

// RunFilters narrows a run listing. Nil fields are ignored; Search matches
// any part of the halt reason.
type RunFilters struct {
	Status *string `json:"status,omitempty"`
	Reason *string `json:"reason,omitempty"`
	Search *string `json:"search,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f RunFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("status", f.Status).
		WhereEquals("reason", f.Reason).
		WhereContains("reason", f.Search)
}

// OutcomeFilters narrows an outcome listing. Nil fields are ignored;
// Moved set to false selects the dead-letter trail.
type OutcomeFilters struct {
	RunID    *uuid.UUID `json:"run_id,omitempty"`
	Moved    *bool      `json:"moved,omitempty"`
	Category *string    `json:"category,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f OutcomeFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("run_id", f.RunID).
		WhereEquals("moved", f.Moved).
		WhereEquals("category", f.Category)
}

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	err := s.Scan(
		&r.ID,
		&r.Status,
		&r.Reason,
		&r.Steps,
		&r.Moved,
		&r.Failed,
		&r.Remaining,
		&r.StartedAt,
		&r.CompletedAt,
	)
	return r, err
}

func scanOutcome(s repository.Scanner) (Outcome, error) {
	var o Outcome
	err := s.Scan(
		&o.ID,
		&o.RunID,
		&o.Item,
		&o.Category,
		&o.Destination,
		&o.Moved,
		&o.Error,
		&o.ProcessedAt,
	)
	return o, err
}
