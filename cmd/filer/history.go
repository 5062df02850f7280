package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/filer/internal/config"
	"github.com/JaimeStill/filer/internal/infrastructure"
	"github.com/JaimeStill/filer/internal/journal"
	"github.com/JaimeStill/filer/pkg/database"
	"github.com/JaimeStill/filer/pkg/lifecycle"
	"github.com/JaimeStill/filer/pkg/pagination"
)

var errJournalDisabled = errors.New("journal disabled: set [journal] enabled = true or FILER_JOURNAL_ENABLED")

type historyOptions struct {
	page       int
	pageSize   int
	sort       string
	search     string
	runID      string
	failed     bool
	jsonOutput bool
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled runs, or the outcomes of one run",
		Long: "Without flags history lists journaled runs, newest first. --run lists the\n" +
			"outcomes of one run; --failed lists evicted items that were never moved.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return errJournalDisabled
			}

			var runID *uuid.UUID
			if opts.runID != "" {
				id, err := uuid.Parse(opts.runID)
				if err != nil {
					return fmt.Errorf("invalid --run: %w", err)
				}
				runID = &id
			}

			return withJournal(cmd, cfg, func(j journal.System) error {
				page := pagination.NewPageRequest(opts.page, opts.pageSize, opts.search, opts.sort, cfg.Journal.Pagination)
				if runID != nil || opts.failed {
					return showOutcomes(cmd, j, page, runID, opts)
				}
				return showRuns(cmd, j, page, opts)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Page size (default from [journal.pagination])")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Comma-separated sort fields; prefix with - for descending")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Search run halt reasons, or outcome items and categories")
	cmd.Flags().StringVar(&opts.runID, "run", "", "Show the outcomes of one run")
	cmd.Flags().BoolVar(&opts.failed, "failed", false, "Show only outcomes that were not moved")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Write the page as JSON")
	return cmd
}

func withJournal(cmd *cobra.Command, cfg *config.Config, fn func(journal.System) error) error {
	logger, closer, err := infrastructure.NewLogger(&cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return err
	}

	lc := lifecycle.New()
	defer lc.Shutdown(cfg.ShutdownTimeoutDuration())

	if err := db.Start(lc); err != nil {
		return err
	}
	if err := lc.WaitForStartup(); err != nil {
		return err
	}

	return fn(journal.New(db.Connection(), logger, cfg.Journal.Pagination))
}

func showRuns(cmd *cobra.Command, j journal.System, page pagination.PageRequest, opts historyOptions) error {
	result, err := j.Runs(cmd.Context(), page, journal.RunFilters{})
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return writeJSON(cmd, result)
	}
	if len(result.Data) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs journaled")
		return nil
	}

	rows := make([][]string, len(result.Data))
	for i, r := range result.Data {
		rows[i] = []string{
			r.ID.String(),
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.Reason,
			strconv.Itoa(r.Steps),
			strconv.Itoa(r.Moved),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Remaining),
			r.Duration().Round(time.Millisecond).String(),
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		"",
		[]string{"Run", "Started", "Status", "Reason", "Steps", "Moved", "Failed", "Remaining", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	writePageFooter(cmd, result.Page, result.TotalPages, result.Total)
	return nil
}

func showOutcomes(cmd *cobra.Command, j journal.System, page pagination.PageRequest, runID *uuid.UUID, opts historyOptions) error {
	title := "Outcomes"
	if runID != nil {
		run, err := j.Find(cmd.Context(), *runID)
		if err != nil {
			return err
		}
		title = fmt.Sprintf("Run %s (%s, %d steps)", run.ID, run.Reason, run.Steps)
	}

	filters := journal.OutcomeFilters{RunID: runID}
	if opts.failed {
		moved := false
		filters.Moved = &moved
	}

	result, err := j.Outcomes(cmd.Context(), page, filters)
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return writeJSON(cmd, result)
	}
	if len(result.Data) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No outcomes journaled")
		return nil
	}

	rows := make([][]string, len(result.Data))
	for i, o := range result.Data {
		detail := o.Destination
		if !o.Moved {
			detail = o.Error
		}
		rows[i] = []string{
			o.ProcessedAt.Local().Format(time.DateTime),
			o.Item,
			o.Category,
			yesNo(o.Moved),
			detail,
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		title,
		[]string{"Processed", "Item", "Category", "Moved", "Destination / Error"},
		rows,
		nil,
	))
	writePageFooter(cmd, result.Page, result.TotalPages, result.Total)
	return nil
}

func writePageFooter(cmd *cobra.Command, page, totalPages, total int) {
	fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d total)\n", page, totalPages, total)
}
