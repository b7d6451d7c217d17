package sync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/cmd/application"
	"github.com/agentstation/harvestsync/internal/cmd/output"
	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/errors"
)

// Execute runs the sync described by flags and writes the outcome to out.
func Execute(ctx context.Context, app application.Application, flags *Flags, out io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	var opts []harvestsync.Option
	if flags.DryRun {
		opts = append(opts, harvestsync.WithDryRun(true))
	}
	client, err := app.Client(opts...)
	if err != nil {
		return err
	}

	if flags.Watch {
		interval, err := resolveInterval(flags.Interval, app.SyncInterval())
		if err != nil {
			return err
		}
		client.OnRunFinished(func(_ context.Context, result *harvestsync.Result, runErr error) {
			if err := render(out, format, result, runErr); err != nil {
				app.Logger().Warn().Err(err).Msg("Failed to render run result")
			}
		})
		app.Logger().Info().Dur("interval", interval).Bool("dry_run", flags.DryRun).Msg("Starting periodic sync")
		return client.Every(ctx, interval)
	}

	result, runErr := client.Sync(ctx)
	if err := render(out, format, result, runErr); err != nil {
		return err
	}
	return runErr
}

func resolveInterval(flag string, configured time.Duration) (time.Duration, error) {
	interval := configured
	if flag != "" {
		d, err := time.ParseDuration(flag)
		if err != nil {
			return 0, errors.NewValidationError("interval", flag, "must be a duration such as 30m")
		}
		interval = d
	}
	if interval == 0 {
		interval = constants.DefaultSyncInterval
	}
	if interval < constants.MinSyncInterval {
		return 0, errors.NewValidationError("interval", interval, "must be at least "+constants.MinSyncInterval.String())
	}
	return interval, nil
}

func render(out io.Writer, format output.Format, result *harvestsync.Result, runErr error) error {
	if !format.IsTable() {
		if result == nil {
			return nil
		}
		return output.NewFormatter(format).Format(out, result)
	}

	if result != nil && len(result.Planned) > 0 {
		if err := output.NewFormatter(format).Format(out, output.ActionsData(result.Planned, format == output.FormatWide)); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	output.PrintSummary(out, result, runErr)
	return nil
}
