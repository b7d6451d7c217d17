package reconciler

import "github.com/agentstation/harvestsync/pkg/rentman"

// Aggregate is the project-level view of a project's subprojects.
type Aggregate struct {
	ProjectID   int64 `json:"project_id" yaml:"project_id"`
	Active      bool  `json:"active" yaml:"active"`
	IsTemplate  bool  `json:"is_template" yaml:"is_template"`
	Subprojects int   `json:"subprojects" yaml:"subprojects"`
	Mixed       bool  `json:"mixed" yaml:"mixed"`
}

// Aggregates maps Rentman project ids to their aggregate.
type Aggregates map[int64]Aggregate

// For returns the aggregate of projectID. A project without subprojects is
// active and not a template.
func (a Aggregates) For(projectID int64) Aggregate {
	if agg, ok := a[projectID]; ok {
		return agg
	}
	return Aggregate{ProjectID: projectID, Active: true}
}

// AggregateOf reduces the subprojects that belong to projectID.
// A project is inactive only when all of its subprojects agree on an
// inactive status; mixed statuses count as active. IsTemplate is true when
// any subproject is a template.
func AggregateOf(projectID int64, subprojects []rentman.Subproject) Aggregate {
	agg := Aggregate{ProjectID: projectID, Active: true}
	var candidate rentman.StatusCode
	for _, sp := range subprojects {
		if sp.ProjectID != projectID {
			continue
		}
		if agg.Subprojects == 0 {
			candidate = sp.Status
		} else if sp.Status != candidate {
			agg.Mixed = true
		}
		agg.Subprojects++
		agg.IsTemplate = agg.IsTemplate || sp.IsTemplate
	}
	if agg.Subprojects > 0 && !agg.Mixed {
		agg.Active = candidate.Active()
	}
	return agg
}

// AggregateAll groups subprojects by project once and aggregates each group.
func AggregateAll(subprojects []rentman.Subproject) Aggregates {
	groups := make(map[int64][]rentman.Subproject)
	for _, sp := range subprojects {
		groups[sp.ProjectID] = append(groups[sp.ProjectID], sp)
	}
	out := make(Aggregates, len(groups))
	for id, group := range groups {
		out[id] = AggregateOf(id, group)
	}
	return out
}
