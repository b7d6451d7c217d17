package reconciler

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/harvestsync/pkg/crossref"
	"github.com/agentstation/harvestsync/pkg/differ"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/logging"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

const templateMarker = "template"

// projectPlanner holds the per-run state of PlanProjects.
type projectPlanner struct {
	opts    Options
	aggs    Aggregates
	clients []harvest.Client
	fold    cases.Caser
	differ  *differ.Differ
}

// PlanProjects returns the project actions for one run. Every Rentman project
// either gets a create, zero or more single-field updates, or skips.
func PlanProjects(ctx context.Context, projects []rentman.Project, subprojects []rentman.Subproject,
	targets []harvest.Project, clients []harvest.Client, opts Options) []Action {
	p := &projectPlanner{
		opts:    opts,
		aggs:    AggregateAll(subprojects),
		clients: clients,
		fold:    cases.Fold(),
		differ:  differ.New(),
	}
	logger := logging.FromContext(ctx)
	actions := []Action{}

	for _, project := range projects {
		agg := p.aggs.For(project.ID)
		if reason, excluded := p.excluded(project, agg); excluded {
			logger.Debug().Int64("source_id", project.ID).Str("skip_reason", reason).Msg("Excluded project")
			actions = append(actions, skip(EntityProject, project.ID, reason))
			continue
		}

		target, ok := crossref.Find(ctx, targets, projectNotes, project.ID)
		if !ok {
			actions = append(actions, p.create(ctx, project, agg))
			continue
		}
		actions = append(actions, p.update(ctx, project, agg, target)...)
	}

	logger.Debug().
		Int("projects", len(projects)).
		Int("targets", len(targets)).
		Int("actions", len(actions)).
		Msg("Planned project actions")
	return actions
}

// excluded applies the exclusion rules in order.
func (p *projectPlanner) excluded(project rentman.Project, agg Aggregate) (string, bool) {
	if strings.Contains(p.fold.String(project.Name), templateMarker) {
		return ReasonTemplateName, true
	}
	if p.opts.ExcludedCustomerID != 0 && project.CustomerID == p.opts.ExcludedCustomerID {
		return ReasonExcludedCustomer, true
	}
	if agg.IsTemplate {
		return ReasonTemplateSubproject, true
	}
	return "", false
}

// resolveClient maps a Rentman customer to a Harvest client id.
func (p *projectPlanner) resolveClient(ctx context.Context, projectID, customerID int64) (int64, string, bool) {
	if customerID == 0 {
		return p.opts.FallbackClientID, "", true
	}
	if client, ok := crossref.Find(ctx, p.clients, clientAddress, customerID); ok {
		return client.ID, "", true
	}
	reason := ReasonUnresolvedClient
	if p.opts.pending(customerID) {
		reason = ReasonClientPending
	}
	logging.FromContext(ctx).Warn().
		Err(errors.NewResolutionError(EntityClient, projectID, customerID)).
		Int64("source_id", projectID).
		Str("skip_reason", reason).
		Msg("Cannot resolve client")
	return 0, reason, false
}

func (p *projectPlanner) create(ctx context.Context, project rentman.Project, agg Aggregate) Action {
	clientID, reason, ok := p.resolveClient(ctx, project.ID, project.CustomerID)
	if !ok {
		a := skip(EntityProject, project.ID, reason)
		change := differ.Skipped("client_id", "", crossref.Format(project.CustomerID))
		a.Change = &change
		return a
	}
	change := differ.Added("project", project.Name)
	return Action{
		Kind:     KindCreateProject,
		Entity:   EntityProject,
		SourceID: project.ID,
		NewProject: &harvest.NewProject{
			ClientID:   clientID,
			Name:       project.Name,
			Code:       strconv.FormatInt(project.Number, 10),
			Notes:      crossref.Format(project.ID),
			IsActive:   agg.Active,
			IsBillable: true,
			BillBy:     harvest.BillByNone,
			BudgetBy:   harvest.BudgetByNone,
		},
		Change: &change,
	}
}

// update compares each field on its own so that every drifted field is a
// separate write.
func (p *projectPlanner) update(ctx context.Context, project rentman.Project, agg Aggregate, target harvest.Project) []Action {
	actions := []Action{}
	patch := func(change *differ.FieldChange, pp harvest.ProjectPatch) {
		actions = append(actions, Action{
			Kind:         KindUpdateProject,
			Entity:       EntityProject,
			SourceID:     project.ID,
			TargetID:     target.ID,
			ProjectPatch: &pp,
			Change:       change,
		})
	}

	if change := p.differ.String("name", target.Name, project.Name); change != nil {
		name := project.Name
		patch(change, harvest.ProjectPatch{Name: &name})
	}

	if target.Code != nil {
		code := strconv.FormatInt(project.Number, 10)
		if change := p.differ.String("code", *target.Code, code); change != nil {
			patch(change, harvest.ProjectPatch{Code: &code})
		}
	}

	if !p.linked(project, target) {
		clientID, reason, ok := p.resolveClient(ctx, project.ID, project.CustomerID)
		switch {
		case !ok:
			a := skip(EntityProject, project.ID, reason)
			a.TargetID = target.ID
			change := differ.Skipped("client_id", strconv.FormatInt(target.ClientID, 10), crossref.Format(project.CustomerID))
			a.Change = &change
			actions = append(actions, a)
		case clientID != target.ClientID:
			patch(p.differ.Int("client_id", target.ClientID, clientID), harvest.ProjectPatch{ClientID: &clientID})
		}
	}

	deactivate := target.IsActive && !agg.Active
	reactivate := p.opts.SymmetricActive && !target.IsActive && agg.Active
	if deactivate || reactivate {
		active := agg.Active
		patch(p.differ.Bool("is_active", target.IsActive, active), harvest.ProjectPatch{IsActive: &active})
	}
	return actions
}

// linked reports whether the Harvest project already belongs to the client
// of the Rentman customer.
func (p *projectPlanner) linked(project rentman.Project, target harvest.Project) bool {
	if project.CustomerID == 0 {
		return target.ClientID == p.opts.FallbackClientID
	}
	for _, c := range p.clients {
		if c.ID == target.ClientID {
			return crossref.Parse(c.Address).Matches(project.CustomerID)
		}
	}
	return false
}

// ApplyProjects writes project actions in order, one call per action. The
// first failed write stops the run; writes before it stay.
func ApplyProjects(ctx context.Context, w ProjectWriter, actions []Action, obs Observer) error {
	ctx = logging.WithEntity(ctx, EntityProject)
	logger := logging.FromContext(ctx)

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch a.Kind {
		case KindSkip:
			logger.Warn().Int64("source_id", a.SourceID).Str("skip_reason", a.Reason).Msg("Skipping project")
		case KindCreateProject:
			project, err := w.CreateProject(ctx, *a.NewProject)
			if err != nil {
				return errors.NewWriteError("create", EntityProject, "for project "+crossref.Format(a.SourceID), err)
			}
			a.TargetID = project.ID
			logger.Info().Int64("source_id", a.SourceID).Int64("project_id", project.ID).Str("name", project.Name).Msg("Created project")
		case KindUpdateProject:
			if a.ProjectPatch == nil || a.ProjectPatch.Empty() {
				return errors.NewValidationError("patch", a.TargetID, "update carries no fields")
			}
			if err := w.UpdateProject(ctx, a.TargetID, *a.ProjectPatch); err != nil {
				return errors.NewWriteError("update", EntityProject, strconv.FormatInt(a.TargetID, 10), err)
			}
			field := ""
			if a.Change != nil {
				field = a.Change.Path
			}
			logger.Info().Int64("source_id", a.SourceID).Int64("project_id", a.TargetID).Str("field", field).Msg("Updated project")
		default:
			return errors.NewValidationError("kind", a.Kind, "not a project action")
		}
		notify(ctx, obs, a)
	}
	return nil
}
