package harvestsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/harvestsync/pkg/differ"
	"github.com/agentstation/harvestsync/pkg/reconciler"
)

// Result represents the outcome of one reconciliation run.
type Result struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	DryRun bool   `json:"dry_run" yaml:"dry_run"`

	// Planned holds every action in plan order: clients first, then projects
	Planned []reconciler.Action `json:"planned" yaml:"planned"`
	// Applied holds the actions written to Harvest, with created ids filled in
	Applied []reconciler.Action `json:"applied" yaml:"applied"`
	// Skipped holds the records and fields deliberately left alone
	Skipped []reconciler.Action `json:"skipped" yaml:"skipped"`

	// Snapshot sizes
	Contacts       int `json:"contacts" yaml:"contacts"`
	Projects       int `json:"projects" yaml:"projects"`
	Subprojects    int `json:"subprojects" yaml:"subprojects"`
	Clients        int `json:"clients" yaml:"clients"`
	TargetProjects int `json:"target_projects" yaml:"target_projects"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

func newResult(runID string, dryRun bool) *Result {
	return &Result{
		RunID:     runID,
		DryRun:    dryRun,
		Planned:   []reconciler.Action{},
		Applied:   []reconciler.Action{},
		Skipped:   []reconciler.Action{},
		StartTime: time.Now(),
	}
}

func (r *Result) finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Changes returns the planned actions that write to Harvest.
func (r *Result) Changes() []reconciler.Action {
	return reconciler.Changes(r.Planned)
}

// HasChanges returns true if the run planned any write.
func (r *Result) HasChanges() bool {
	return len(r.Changes()) > 0
}

// Changeset summarizes the planned field changes.
func (r *Result) Changeset() *differ.Changeset {
	return reconciler.Changeset(r.Planned)
}

// Count returns the number of planned actions of kind k.
func (r *Result) Count(k reconciler.Kind) int {
	n := 0
	for _, a := range r.Planned {
		if a.Kind == k {
			n++
		}
	}
	return n
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if !r.HasChanges() && len(r.Skipped) == 0 {
		return "No changes detected"
	}

	var parts []string
	for _, k := range []reconciler.Kind{
		reconciler.KindCreateClient,
		reconciler.KindUpdateClient,
		reconciler.KindCreateProject,
		reconciler.KindUpdateProject,
	} {
		if n := r.Count(k); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ReplaceAll(string(k), "_", " ")))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no writes")
	}

	summary := strings.Join(parts, ", ")
	if len(r.Skipped) > 0 {
		summary += fmt.Sprintf(" (%d skipped)", len(r.Skipped))
	}
	if r.DryRun {
		summary += " (Dry run)"
	}
	return summary
}
