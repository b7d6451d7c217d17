// Package sync provides the sync and plan commands.
package sync

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/harvestsync/cmd/application"
)

// Flags holds the sync command flags.
type Flags struct {
	DryRun   bool
	Watch    bool
	Interval string
}

// NewCommand creates the sync command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Reconcile Harvest clients and projects with Rentman",
		Long: `Sync reads every contact, project and subproject from Rentman and every
client and project from Harvest, then creates or updates Harvest records
until they match.

Nothing is ever deleted. Projects named like templates, template subprojects
and the excluded customer are skipped. Each differing field becomes its own
update, and the run stops at the first write Harvest rejects.

With --watch the sync repeats every SYNC_INTERVAL (or --interval) until
interrupted. Failed runs are logged and retried on the next tick.`,
		Example: `  harvestsync sync                 # Run once
  harvestsync sync --dry-run       # Show what would change
  harvestsync sync --watch         # Run every SYNC_INTERVAL
  harvestsync sync --watch --interval 15m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "plan changes without writing to Harvest")
	cmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "repeat the sync on an interval")
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "interval for --watch, e.g. 30m (default SYNC_INTERVAL)")

	return cmd
}

// NewPlanCommand creates the plan command, a dry-run sync that always lists
// every planned action.
func NewPlanCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "plan",
		GroupID: "core",
		Short:   "Show the actions a sync would take",
		Long: `Plan fetches both systems and prints every action the next sync would take,
including skipped records and their reasons. Nothing is written to Harvest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, &Flags{DryRun: true}, cmd.OutOrStdout())
		},
	}
}
