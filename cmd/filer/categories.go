package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the configured category table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := make([][]string, len(cfg.Workflow.Categories))
			for i, c := range cfg.Workflow.Categories {
				rows[i] = []string{
					c.Name,
					strings.Join(c.Extensions, ", "),
					yesNo(c.Name == cfg.Workflow.Fallback),
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				"",
				[]string{"Category", "Extensions", "Fallback"},
				rows,
				nil,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "classifier: %s  max steps: %d\n",
				cfg.Classifier.Mode, cfg.Workflow.MaxSteps)
			return nil
		},
	}
}
