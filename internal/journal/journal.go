// Package journal records runs and per-item outcomes in PostgreSQL and reads
// them back for the history command. Failed outcomes form the dead-letter
// trail for items a run evicted without moving.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/filer/internal/workflow"
	"github.com/JaimeStill/filer/pkg/pagination"
	"github.com/JaimeStill/filer/pkg/query"
	"github.com/JaimeStill/filer/pkg/repository"
)

// Migrations holds the journal schema for golang-migrate's iofs source.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// System records runs as a workflow.Recorder and serves run history.
type System interface {
	workflow.Recorder

	Runs(ctx context.Context, page pagination.PageRequest, filters RunFilters) (*pagination.PageResult[Run], error)
	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	Outcomes(ctx context.Context, page pagination.PageRequest, filters OutcomeFilters) (*pagination.PageResult[Outcome], error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a journal backed by db.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "journal"),
		pagination: pagination,
	}
}

func (r *repo) Runs(
	ctx context.Context,
	page pagination.PageRequest,
	filters RunFilters,
) (*pagination.PageResult[Run], error) {
	page.Normalize(r.pagination)

	if filters.Search == nil {
		filters.Search = page.Search
	}

	qb := query.NewBuilder(runProjection, runDefaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.PageSize, page.Offset())
	runs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(runs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	q, args := query.NewBuilder(runProjection).BuildSingle("id", id)

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) Outcomes(
	ctx context.Context,
	page pagination.PageRequest,
	filters OutcomeFilters,
) (*pagination.PageResult[Outcome], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(outcomeProjection, outcomeDefaultSort).
		WhereSearch(page.Search, "item", "category")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.PageSize, page.Offset())
	outcomes, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanOutcome)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}

	result := pagination.NewPageResult(outcomes, total, page.Page, page.PageSize)
	return &result, nil
}
