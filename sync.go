package harvestsync

import (
	"context"

	"github.com/google/uuid"

	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/logging"
	"github.com/agentstation/harvestsync/pkg/reconciler"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

// snapshot is everything read at the start of a run.
type snapshot struct {
	contacts       []rentman.Contact
	projects       []rentman.Project
	subprojects    []rentman.Subproject
	clients        []harvest.Client
	targetProjects []harvest.Project
}

// Sync runs one full reconciliation: fetch, plan and apply clients, then
// plan and apply projects. A fetch failure aborts before any write. A write
// failure stops the run and is returned with the partial result.
func (c *client) Sync(ctx context.Context) (result *Result, err error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)
	result = newResult(runID, c.config.DryRun)

	defer func() {
		result.finish()
		if err != nil {
			logger.Error().Err(err).Bool("fatal", true).Bool("retryable", errors.IsRetryable(err)).Msg("Sync failed")
		} else {
			logger.Info().
				Int("applied", len(result.Applied)).
				Int("skipped", len(result.Skipped)).
				Dur("duration", result.Duration).
				Msg("Sync finished")
		}
		c.hooks.triggerRunFinished(ctx, result, err)
	}()

	// Step 1: Fetch snapshots from both systems
	snap, err := c.fetch(ctx)
	if err != nil {
		return result, err
	}
	result.Contacts = len(snap.contacts)
	result.Projects = len(snap.projects)
	result.Subprojects = len(snap.subprojects)
	result.Clients = len(snap.clients)
	result.TargetProjects = len(snap.targetProjects)

	obs := &runObserver{result: result, hooks: c.hooks}

	// Step 2: Plan and apply clients
	clientActions := reconciler.PlanClients(ctx, snap.contacts, snap.clients)
	result.Planned = append(result.Planned, clientActions...)

	var pending []int64
	if c.config.DryRun {
		pending = report(ctx, clientActions, obs)
	} else {
		created, err := reconciler.ApplyClients(ctx, c.target, clientActions, obs)
		// clients created before a failure still exist in Harvest
		snap.clients = append(snap.clients, created...)
		if err != nil {
			return result, err
		}
	}

	// Step 3: Plan and apply projects against the now-current client list
	projectActions := reconciler.PlanProjects(ctx, snap.projects, snap.subprojects,
		snap.targetProjects, snap.clients, c.config.planOptions(pending))
	result.Planned = append(result.Planned, projectActions...)

	if c.config.DryRun {
		report(ctx, projectActions, obs)
		logger.Info().Bool("dry_run", true).Int("planned", len(result.Changes())).Msg("Dry run completed - no changes applied")
		return result, nil
	}
	if err := reconciler.ApplyProjects(ctx, c.target, projectActions, obs); err != nil {
		return result, err
	}

	if !result.HasChanges() {
		logger.Info().Msg("No changes detected")
	}
	return result, nil
}

// fetch reads the five snapshots in order; the first failure aborts.
func (c *client) fetch(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}
	var err error

	rentmanCtx := logging.WithSystem(ctx, "rentman")
	if snap.contacts, err = c.source.Contacts(rentmanCtx); err != nil {
		return nil, asFetchError("rentman", "contacts", err)
	}
	if snap.projects, err = c.source.Projects(rentmanCtx); err != nil {
		return nil, asFetchError("rentman", "projects", err)
	}
	if snap.subprojects, err = c.source.Subprojects(rentmanCtx); err != nil {
		return nil, asFetchError("rentman", "subprojects", err)
	}

	harvestCtx := logging.WithSystem(ctx, "harvest")
	if snap.clients, err = c.target.Clients(harvestCtx); err != nil {
		return nil, asFetchError("harvest", "clients", err)
	}
	if snap.targetProjects, err = c.target.Projects(harvestCtx); err != nil {
		return nil, asFetchError("harvest", "projects", err)
	}

	logging.FromContext(ctx).Debug().
		Int("contacts", len(snap.contacts)).
		Int("projects", len(snap.projects)).
		Int("subprojects", len(snap.subprojects)).
		Int("clients", len(snap.clients)).
		Int("target_projects", len(snap.targetProjects)).
		Msg("Fetched snapshots")
	return snap, nil
}

func asFetchError(system, resource string, err error) error {
	if errors.IsFetch(err) {
		return err
	}
	return errors.NewFetchError(system, resource, err)
}

// report walks a plan without writing. It fires skip hooks and returns the
// contact ids whose clients would be created.
func report(ctx context.Context, actions []reconciler.Action, obs *runObserver) []int64 {
	logger := logging.FromContext(ctx)
	var pending []int64
	for _, a := range actions {
		if a.IsSkip() {
			logger.Warn().Int64("source_id", a.SourceID).Str("skip_reason", a.Reason).Msg("Would skip " + a.Entity)
			obs.ActionSkipped(ctx, a)
			continue
		}
		if a.Kind == reconciler.KindCreateClient {
			pending = append(pending, a.SourceID)
		}
		logger.Info().Bool("dry_run", true).Msg("Would " + a.String())
	}
	return pending
}

// runObserver records applied and skipped actions and forwards them to hooks.
type runObserver struct {
	result *Result
	hooks  *hooks
}

func (o *runObserver) ActionApplied(ctx context.Context, a reconciler.Action) {
	o.result.Applied = append(o.result.Applied, a)
	o.hooks.triggerApplied(ctx, a)
}

func (o *runObserver) ActionSkipped(ctx context.Context, a reconciler.Action) {
	o.result.Skipped = append(o.result.Skipped, a)
	o.hooks.triggerSkipped(ctx, a)
}
