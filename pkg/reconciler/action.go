package reconciler

import (
	"fmt"

	"github.com/agentstation/harvestsync/pkg/differ"
	"github.com/agentstation/harvestsync/pkg/harvest"
)

// Kind identifies what an action does to Harvest.
type Kind string

const (
	// KindCreateClient creates a Harvest client for a Rentman contact.
	KindCreateClient Kind = "create_client"
	// KindUpdateClient renames a Harvest client.
	KindUpdateClient Kind = "update_client"
	// KindCreateProject creates a Harvest project for a Rentman project.
	KindCreateProject Kind = "create_project"
	// KindUpdateProject patches a single field of a Harvest project.
	KindUpdateProject Kind = "update_project"
	// KindSkip records a record or field that is deliberately not written.
	KindSkip Kind = "skip"
)

// Entity names used in actions and logs.
const (
	EntityClient  = "client"
	EntityProject = "project"
)

// Skip reasons.
const (
	ReasonTemplateName       = "name contains template"
	ReasonExcludedCustomer   = "customer is excluded"
	ReasonTemplateSubproject = "subproject is a template"
	ReasonUnresolvedClient   = "client not found"
	ReasonClientPending      = "client pending creation"
)

// Action is one planned change to Harvest. Exactly one payload is set,
// matching Kind; skip actions carry a Reason instead.
type Action struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Entity   string `json:"entity" yaml:"entity"`
	SourceID int64  `json:"source_id" yaml:"source_id"`
	TargetID int64  `json:"target_id,omitempty" yaml:"target_id,omitempty"`

	NewClient    *harvest.NewClient    `json:"new_client,omitempty" yaml:"new_client,omitempty"`
	ClientPatch  *harvest.ClientPatch  `json:"client_patch,omitempty" yaml:"client_patch,omitempty"`
	NewProject   *harvest.NewProject   `json:"new_project,omitempty" yaml:"new_project,omitempty"`
	ProjectPatch *harvest.ProjectPatch `json:"project_patch,omitempty" yaml:"project_patch,omitempty"`

	Change *differ.FieldChange `json:"change,omitempty" yaml:"change,omitempty"`
	Reason string              `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// IsSkip reports whether the action is never written.
func (a Action) IsSkip() bool {
	return a.Kind == KindSkip
}

// String returns a one-line description for logs.
func (a Action) String() string {
	switch a.Kind {
	case KindSkip:
		return fmt.Sprintf("skip %s %d: %s", a.Entity, a.SourceID, a.Reason)
	case KindCreateClient, KindCreateProject:
		return fmt.Sprintf("create %s for %d", a.Entity, a.SourceID)
	default:
		field := ""
		if a.Change != nil {
			field = " " + a.Change.Path
		}
		return fmt.Sprintf("update %s %d%s", a.Entity, a.TargetID, field)
	}
}

// Changes returns the actions that write to Harvest.
func Changes(actions []Action) []Action {
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if !a.IsSkip() {
			out = append(out, a)
		}
	}
	return out
}

// Skips returns the skip actions.
func Skips(actions []Action) []Action {
	out := []Action{}
	for _, a := range actions {
		if a.IsSkip() {
			out = append(out, a)
		}
	}
	return out
}

// Changeset summarizes actions as field changes.
func Changeset(actions []Action) *differ.Changeset {
	changes := make([]differ.FieldChange, 0, len(actions))
	for _, a := range actions {
		if a.Change != nil {
			changes = append(changes, *a.Change)
		}
	}
	return differ.NewChangeset(changes)
}

func skip(entity string, sourceID int64, reason string) Action {
	return Action{Kind: KindSkip, Entity: entity, SourceID: sourceID, Reason: reason}
}
