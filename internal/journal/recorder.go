package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/filer/internal/workflow"
	"github.com/JaimeStill/filer/pkg/repository"
)

func (r *repo) RunStarted(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO runs(id, status, started_at) VALUES ($1, $2, $3)",
		runID, StatusRunning, startedAt,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.DebugContext(ctx, "run recorded", "run_id", runID)
	return nil
}

func (r *repo) ItemProcessed(ctx context.Context, runID uuid.UUID, o workflow.Outcome) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outcomes(run_id, item, category, destination, moved, error)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		runID, o.Item, o.Category, o.Destination, o.Moved, o.Error,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) CycleCompleted(ctx context.Context, runID uuid.UUID, step int) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE runs SET steps = $2 WHERE id = $1",
		runID, step,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) RunHalted(ctx context.Context, res *workflow.Result) error {
	q := `
		UPDATE runs
		SET status = $2, reason = $3, steps = $4, moved = $5, failed = $6, remaining = $7, completed_at = $8
		WHERE id = $1
		RETURNING id, status, reason, steps, moved, failed, remaining, started_at, completed_at`

	args := []any{
		res.RunID,
		StatusHalted,
		string(res.Reason),
		res.Steps,
		res.Moved(),
		res.Failed(),
		len(res.Remaining),
		res.CompletedAt,
	}

	run, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRun)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "run journaled",
		"run_id", run.ID,
		"reason", run.Reason,
		"moved", run.Moved,
		"failed", run.Failed,
		"duration", run.Duration(),
	)
	return nil
}
