package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/filer/internal/workflow"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResult(cmd *cobra.Command, res *workflow.Result) {
	out := cmd.OutOrStdout()

	if len(res.Outcomes) > 0 {
		fmt.Fprintln(out, renderTable(
			"Run "+res.RunID.String(),
			[]string{"#", "Item", "Category", "Moved", "Destination / Error"},
			outcomeRows(res.Outcomes),
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		))
	}

	fmt.Fprintf(out, "halted: %s after %d steps in %s\n",
		res.Reason, res.Steps, res.CompletedAt.Sub(res.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "moved: %d  failed: %d  remaining: %d\n",
		res.Moved(), res.Failed(), len(res.Remaining))

	if len(res.Remaining) > 0 {
		fmt.Fprintf(out, "pending: %s\n", strings.Join(res.Remaining, ", "))
	}
}

func outcomeRows(outcomes []workflow.Outcome) [][]string {
	rows := make([][]string, 0, len(outcomes))
	for i, o := range outcomes {
		detail := o.Destination
		if !o.Moved {
			detail = o.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			o.Item,
			o.Category,
			yesNo(o.Moved),
			detail,
		})
	}
	return rows
}
