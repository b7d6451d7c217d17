package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/internal/journal"
	"github.com/agentstation/harvestsync/pkg/differ"
	"github.com/agentstation/harvestsync/pkg/reconciler"
)

func sampleActions() []reconciler.Action {
	return []reconciler.Action{
		{
			Kind:     reconciler.KindCreateClient,
			Entity:   reconciler.EntityClient,
			SourceID: 42,
			Change:   &differ.FieldChange{Path: "client", NewValue: "Acme", Type: differ.ChangeTypeAdd},
		},
		{
			Kind:     reconciler.KindUpdateProject,
			Entity:   reconciler.EntityProject,
			SourceID: 7,
			TargetID: 9,
			Change:   &differ.FieldChange{Path: "name", OldValue: "Old", NewValue: "New", Type: differ.ChangeTypeUpdate},
		},
		{
			Kind:     reconciler.KindSkip,
			Entity:   reconciler.EntityProject,
			SourceID: 8,
			Reason:   reconciler.ReasonTemplateName,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)

	assert.True(t, FormatWide.IsTable())
	assert.False(t, FormatJSON.IsTable())
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Create Client", KindLabel(reconciler.KindCreateClient))
	assert.Equal(t, "Skip", KindLabel(reconciler.KindSkip))
}

func TestActionsData(t *testing.T) {
	data := ActionsData(sampleActions(), false)
	require.Len(t, data.Rows, 3)
	assert.Len(t, data.Headers, 6)

	assert.Equal(t, []string{"+", "Create Client client", "42", "-", "client", "Acme"}, data.Rows[0])
	assert.Equal(t, []string{"~", "Update Project project", "7", "9", "name", "Old → New"}, data.Rows[1])
	assert.Equal(t, []string{"-", "Skip project", "8", "-", "-", reconciler.ReasonTemplateName}, data.Rows[2])
}

func TestActionsDataWide(t *testing.T) {
	data := ActionsData(sampleActions(), true)
	require.Len(t, data.Headers, 7)

	diff := data.Rows[1][6]
	assert.Contains(t, diff, "-Old")
	assert.Contains(t, diff, "+New")
	assert.Equal(t, "-", data.Rows[0][6])
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, ActionsData(sampleActions(), false)))

	out := buf.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Old → New")
	assert.Contains(t, out, reconciler.ReasonTemplateName)
}

func TestTableFormatterFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"planned": 3}))
	assert.Equal(t, "planned: 3\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, sampleActions()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "create_client", decoded[0]["kind"])
}

func TestRunsData(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []journal.Run{
		{ID: "a", StartedAt: start, FinishedAt: start.Add(2 * time.Second), Status: journal.StatusOK, Planned: 3, Applied: 2, Skipped: 1},
		{ID: "b", StartedAt: start, Status: journal.StatusFailed, DryRun: true},
		{ID: "c", StartedAt: start, Status: journal.StatusRunning},
	}
	data := RunsData(runs)
	require.Len(t, data.Rows, 3)

	assert.Equal(t, "✓", data.Rows[0][0])
	assert.Equal(t, "2s", data.Rows[0][3])
	assert.Equal(t, []string{"3", "2", "1"}, data.Rows[0][5:])
	assert.Equal(t, "✗", data.Rows[1][0])
	assert.Equal(t, "failed (dry run)", data.Rows[1][4])
	assert.Equal(t, "...", data.Rows[2][0])
}

func TestEntriesData(t *testing.T) {
	data := EntriesData([]journal.Entry{
		{Seq: 1, Outcome: journal.OutcomeApplied, Kind: reconciler.KindUpdateProject, Entity: "project", SourceID: 7, TargetID: 9, Field: "is_active", OldValue: "true", NewValue: "false"},
		{Seq: 2, Outcome: journal.OutcomeSkipped, Kind: reconciler.KindSkip, Entity: "project", SourceID: 8, Reason: "name contains template"},
	})
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "true → false", data.Rows[0][6])
	assert.Equal(t, "name contains template", data.Rows[1][6])
	assert.Equal(t, "-", data.Rows[1][4])
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, &harvestsync.Result{DryRun: true}, nil)
	assert.Equal(t, "i No changes detected\n", buf.String())

	buf.Reset()
	PrintSummary(&buf, nil, errors.New("boom"))
	assert.True(t, strings.HasPrefix(buf.String(), "✗ Sync failed: boom"))

	buf.Reset()
	PrintSummary(&buf, nil, nil)
	assert.Empty(t, buf.String())
}
