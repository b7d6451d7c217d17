// Package history provides the history command.
package history

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/harvestsync/cmd/application"
	"github.com/agentstation/harvestsync/internal/cmd/output"
)

// NewCommand creates the history command.
func NewCommand(app application.Application) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history [run-id]",
		GroupID: "management",
		Short:   "Show journaled sync runs",
		Long: `History lists recent sync runs from the local journal, newest first.
Given a run id it lists every action that run applied or skipped.`,
		Example: `  harvestsync history
  harvestsync history --limit 50
  harvestsync history 3f2b7c1e-9d8a-4c56-b1e2-0a9f8e7d6c5b`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return Execute(cmd.Context(), app, runID, limit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to show")

	return cmd
}

// Execute prints the run list, or the entries of runID when it is set.
func Execute(ctx context.Context, app application.Application, runID string, limit int, out io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	history, err := app.History()
	if err != nil {
		return err
	}

	var data any
	if runID != "" {
		entries, err := history.Entries(ctx, runID)
		if err != nil {
			return err
		}
		data = entries
		if format.IsTable() {
			data = output.EntriesData(entries)
		}
	} else {
		runs, err := history.Runs(ctx, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 && format.IsTable() {
			_, err := fmt.Fprintln(out, "No runs recorded yet")
			return err
		}
		data = runs
		if format.IsTable() {
			data = output.RunsData(runs)
		}
	}
	return output.NewFormatter(format).Format(out, data)
}
