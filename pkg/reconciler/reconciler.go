// Package reconciler plans and applies the changes that bring Harvest in line
// with a Rentman snapshot. Planning is pure: it reads snapshots and returns
// actions. Applying writes the actions one by one and stops at the first
// failure.
package reconciler

import (
	"context"

	"github.com/agentstation/harvestsync/pkg/harvest"
)

// ClientWriter creates and updates Harvest clients.
type ClientWriter interface {
	CreateClient(ctx context.Context, c harvest.NewClient) (harvest.Client, error)
	UpdateClient(ctx context.Context, id int64, patch harvest.ClientPatch) error
}

// ProjectWriter creates and updates Harvest projects.
type ProjectWriter interface {
	CreateProject(ctx context.Context, p harvest.NewProject) (harvest.Project, error)
	UpdateProject(ctx context.Context, id int64, patch harvest.ProjectPatch) error
}

// Observer is told about every action as it is applied or skipped.
type Observer interface {
	ActionApplied(ctx context.Context, a Action)
	ActionSkipped(ctx context.Context, a Action)
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Applied func(ctx context.Context, a Action)
	Skipped func(ctx context.Context, a Action)
}

// ActionApplied implements Observer.
func (o ObserverFuncs) ActionApplied(ctx context.Context, a Action) {
	if o.Applied != nil {
		o.Applied(ctx, a)
	}
}

// ActionSkipped implements Observer.
func (o ObserverFuncs) ActionSkipped(ctx context.Context, a Action) {
	if o.Skipped != nil {
		o.Skipped(ctx, a)
	}
}

func notify(ctx context.Context, obs Observer, a Action) {
	if obs == nil {
		return
	}
	if a.IsSkip() {
		obs.ActionSkipped(ctx, a)
		return
	}
	obs.ActionApplied(ctx, a)
}

// clientAddress is the cross-reference field of a Harvest client.
func clientAddress(c harvest.Client) *string { return c.Address }

// projectNotes is the cross-reference field of a Harvest project.
func projectNotes(p harvest.Project) *string { return p.Notes }
