package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/internal/cmd/emoji"
	"github.com/agentstation/harvestsync/internal/journal"
	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/differ"
	"github.com/agentstation/harvestsync/pkg/reconciler"
)

var title = cases.Title(language.English)

// KindLabel renders an action kind for humans, e.g. "Create Client".
func KindLabel(k reconciler.Kind) string {
	return title.String(strings.ReplaceAll(string(k), "_", " "))
}

// ActionsData converts actions to table data. Wide tables carry the unified
// diff of each field change.
func ActionsData(actions []reconciler.Action, wide bool) Data {
	headers := []string{"", "Action", "Rentman ID", "Harvest ID", "Field", "Change"}
	if wide {
		headers = append(headers, "Diff")
	}

	d := differ.New()
	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		row := []string{
			actionSymbol(a),
			KindLabel(a.Kind) + " " + a.Entity,
			strconv.FormatInt(a.SourceID, 10),
			idOrDash(a.TargetID),
			"-",
			changeText(a),
		}
		if a.Change != nil {
			row[4] = a.Change.Path
		}
		if wide {
			diff := "-"
			if a.Change != nil && a.Change.Type == differ.ChangeTypeUpdate {
				diff = strings.TrimRight(d.Unified(*a.Change), "\n")
			}
			row = append(row, diff)
		}
		rows = append(rows, row)
	}

	align := []Align{AlignCenter, AlignLeft, AlignRight, AlignRight, AlignLeft, AlignLeft}
	if wide {
		align = append(align, AlignLeft)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ResultData converts a run result to a key-value table.
func ResultData(r *harvestsync.Result) Data {
	rows := [][]string{
		{"Run ID", r.RunID},
		{"Dry Run", strconv.FormatBool(r.DryRun)},
		{"Snapshot", fmt.Sprintf("%d contacts, %d projects, %d subprojects / %d clients, %d projects",
			r.Contacts, r.Projects, r.Subprojects, r.Clients, r.TargetProjects)},
	}
	for _, k := range []reconciler.Kind{
		reconciler.KindCreateClient,
		reconciler.KindUpdateClient,
		reconciler.KindCreateProject,
		reconciler.KindUpdateProject,
		reconciler.KindSkip,
	} {
		rows = append(rows, []string{KindLabel(k), strconv.Itoa(r.Count(k))})
	}
	rows = append(rows,
		[]string{"Applied", strconv.Itoa(len(r.Applied))},
		[]string{"Duration", r.Duration.Round(time.Millisecond).String()},
	)
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// RunsData converts journaled runs to table data.
func RunsData(runs []journal.Run) Data {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := r.Status
		if r.DryRun {
			status += " (dry run)"
		}
		rows = append(rows, []string{
			runSymbol(r.Status),
			r.ID,
			r.StartedAt.Local().Format(constants.TimeFormatHuman),
			r.Duration().Round(time.Millisecond).String(),
			status,
			strconv.Itoa(r.Planned),
			strconv.Itoa(r.Applied),
			strconv.Itoa(r.Skipped),
		})
	}
	return Data{
		Headers:         []string{"", "Run", "Started", "Duration", "Status", "Planned", "Applied", "Skipped"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

// EntriesData converts the journaled actions of one run to table data.
func EntriesData(entries []journal.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		change := e.Reason
		if change == "" && e.Field != "" {
			change = changeArrow(e.OldValue, e.NewValue)
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Seq),
			e.Outcome,
			KindLabel(e.Kind) + " " + e.Entity,
			strconv.FormatInt(e.SourceID, 10),
			idOrDash(e.TargetID),
			orDash(e.Field),
			orDash(change),
		})
	}
	return Data{
		Headers: []string{"#", "Outcome", "Action", "Rentman ID", "Harvest ID", "Field", "Change"},
		Rows:    rows,
	}
}

// PrintSummary writes the one-line run summary with a status symbol.
func PrintSummary(w io.Writer, r *harvestsync.Result, runErr error) {
	switch {
	case runErr != nil:
		fmt.Fprintf(w, "%s Sync failed: %v\n", emoji.Error, runErr)
	case r == nil:
		return
	case r.DryRun:
		fmt.Fprintf(w, "%s %s\n", emoji.Info, r.Summary())
	default:
		fmt.Fprintf(w, "%s %s\n", emoji.Success, r.Summary())
	}
}

func actionSymbol(a reconciler.Action) string {
	switch a.Kind {
	case reconciler.KindSkip:
		return emoji.Skip
	case reconciler.KindCreateClient, reconciler.KindCreateProject:
		return emoji.Add
	default:
		return emoji.Update
	}
}

func runSymbol(status string) string {
	switch status {
	case journal.StatusOK:
		return emoji.Success
	case journal.StatusFailed:
		return emoji.Error
	default:
		return emoji.Spinner
	}
}

func changeText(a reconciler.Action) string {
	if a.IsSkip() {
		return a.Reason
	}
	if a.Change == nil {
		return "-"
	}
	if a.Change.Type == differ.ChangeTypeAdd {
		return a.Change.NewValue
	}
	return changeArrow(a.Change.OldValue, a.Change.NewValue)
}

func changeArrow(old, updated string) string {
	return orDash(old) + " → " + orDash(updated)
}

func idOrDash(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
