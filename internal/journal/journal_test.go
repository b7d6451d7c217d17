package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/harvestsync"
	"github.com/agentstation/harvestsync/internal/fake"
	"github.com/agentstation/harvestsync/internal/journal"
	harvesterrors "github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
	"github.com/agentstation/harvestsync/pkg/reconciler"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func source() *fake.Source {
	return fake.NewSource(
		[]rentman.Contact{{ID: 42, DisplayName: "Acme"}},
		[]rentman.Project{
			{ID: 7, Name: "Festival", CustomerID: 42, Number: 1},
			{ID: 8, Name: "Demo Template", CustomerID: 42, Number: 2},
		},
		nil,
	)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = journal.Open(path)
	require.NoError(t, err, "migrations are applied once")
	assert.Equal(t, path, j.Path())
	require.NoError(t, j.Close())
}

func TestAttachRecordsRuns(t *testing.T) {
	logging.DisableLoggingForTest(t)
	j := openJournal(t)

	hs, err := harvestsync.New(source(), fake.NewTarget(nil, nil), harvestsync.WithFallbackClientID(1))
	require.NoError(t, err)
	j.Attach(hs)

	ctx := context.Background()
	result, err := hs.Sync(ctx)
	require.NoError(t, err)

	runs, err := j.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, journal.StatusOK, run.Status)
	assert.Equal(t, 2, run.Planned)
	assert.Equal(t, 2, run.Applied)
	assert.Equal(t, 1, run.Skipped)
	assert.False(t, run.DryRun)
	assert.GreaterOrEqual(t, run.Duration(), time.Duration(0))

	entries, err := j.Entries(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, reconciler.KindCreateClient, entries[0].Kind)
	assert.Equal(t, journal.OutcomeApplied, entries[0].Outcome)
	assert.Equal(t, "Acme", entries[0].NewValue)
	assert.Equal(t, 1, entries[0].Seq)
	assert.Equal(t, reconciler.KindCreateProject, entries[1].Kind)
	assert.NotZero(t, entries[1].TargetID)
	assert.Equal(t, journal.OutcomeSkipped, entries[2].Outcome)
	assert.Equal(t, reconciler.ReasonTemplateName, entries[2].Reason)
}

func TestFailedRunIsRecorded(t *testing.T) {
	logging.DisableLoggingForTest(t)
	j := openJournal(t)

	src := source().FailWith("contacts", errors.New("timeout"))
	hs, err := harvestsync.New(src, fake.NewTarget(nil, nil), harvestsync.WithFallbackClientID(1))
	require.NoError(t, err)
	j.Attach(hs)

	ctx := context.Background()
	_, err = hs.Sync(ctx)
	require.Error(t, err)

	runs, err := j.Runs(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, journal.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "timeout")

	entries, err := j.Entries(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunsNewestFirst(t *testing.T) {
	logging.DisableLoggingForTest(t)
	j := openJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		id := uuid.NewString()
		ids = append(ids, id)
		start := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, j.FinishRun(ctx, &harvestsync.Result{
			RunID: id, StartTime: start, EndTime: start.Add(time.Second),
		}, nil))
	}

	runs, err := j.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Equal(t, time.Second, runs[0].Duration())
}

func TestValidation(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	_, err := j.Runs(ctx, 0)
	assert.True(t, harvesterrors.IsValidationError(err))

	_, err = j.Entries(ctx, "not-a-uuid")
	assert.True(t, harvesterrors.IsValidationError(err))

	_, err = j.Entries(ctx, uuid.NewString())
	assert.True(t, harvesterrors.IsNotFound(err))

	err = j.RecordAction(ctx, "", journal.OutcomeApplied, reconciler.Action{})
	assert.True(t, harvesterrors.IsValidationError(err))

	assert.Error(t, j.FinishRun(ctx, nil, nil))
}

func TestInMemory(t *testing.T) {
	j, err := journal.Open(journal.InMemory)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.Runs(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
