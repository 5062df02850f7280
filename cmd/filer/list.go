package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/filer/internal/classifier"
	"github.com/JaimeStill/filer/internal/infrastructure"
	"github.com/JaimeStill/filer/pkg/lifecycle"
	"github.com/JaimeStill/filer/pkg/storage"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending items in the source namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, closer, err := infrastructure.NewLogger(&cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			store, err := storage.New(&cfg.Storage, logger)
			if err != nil {
				return err
			}

			lc := lifecycle.New()
			defer lc.Shutdown(cfg.ShutdownTimeoutDuration())

			if err := store.Start(lc); err != nil {
				return err
			}
			if err := lc.WaitForStartup(); err != nil {
				return err
			}

			items, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending items")
				return nil
			}

			rows := make([][]string, len(items))
			for i, item := range items {
				rows[i] = []string{strconv.Itoa(i + 1), item, classifier.Signal(item)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				"",
				[]string{"#", "Item", "Extension"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the listing as JSON")
	return cmd
}
