package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/filer/internal/infrastructure"
	"github.com/JaimeStill/filer/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var maxSteps int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sort pending items until none remain or the step budget is spent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-steps") {
				cfg.Workflow.MaxSteps = maxSteps
			}

			lock := flock.New(cfg.LockFile)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another run holds %s", cfg.LockFile)
			}
			defer lock.Unlock()

			infra, err := infrastructure.New(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := infra.Shutdown(); err != nil {
					infra.Logger.Error("shutdown failed", "error", err)
				}
			}()

			if err := infra.Start(); err != nil {
				return err
			}

			driver, err := workflow.NewDriver(infra.Runtime(), cfg.Workflow.MaxSteps)
			if err != nil {
				return err
			}

			res, err := driver.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}

			if jsonOutput {
				return writeJSON(cmd, res)
			}
			writeResult(cmd, res)
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxSteps, "max-steps", "n", 0, "Override the configured step budget")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the run result as JSON")
	return cmd
}
