package reconciler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/harvestsync/internal/fake"
	"github.com/agentstation/harvestsync/pkg/differ"
	harvesterrors "github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/logging"
	"github.com/agentstation/harvestsync/pkg/reconciler"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

func TestPlanClientsCreatesMissingClient(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()

	contacts := []rentman.Contact{{ID: 42, DisplayName: "Acme"}}
	actions := reconciler.PlanClients(ctx, contacts, nil)

	want := []reconciler.Action{{
		Kind:      reconciler.KindCreateClient,
		Entity:    reconciler.EntityClient,
		SourceID:  42,
		NewClient: &harvest.NewClient{Name: "Acme", Address: "42"},
		Change:    &differ.FieldChange{Path: "client", NewValue: "Acme", Type: differ.ChangeTypeAdd},
	}}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("PlanClients mismatch (-want +got):\n%s", diff)
	}

	target := fake.NewTarget(nil, nil)
	created, err := reconciler.ApplyClients(ctx, target, actions, nil)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Acme", created[0].Name)

	clients, err := target.Clients(ctx)
	require.NoError(t, err)
	assert.Empty(t, reconciler.PlanClients(ctx, contacts, clients), "second run must be a no-op")
}

func TestPlanClientsRenamesOnExactMismatch(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()

	contacts := []rentman.Contact{
		{ID: 1, DisplayName: "Acme"},
		{ID: 2, DisplayName: "Globex"},
	}
	clients := []harvest.Client{
		{ID: 10, Name: "ACME", Address: fake.Ptr("1")},
		{ID: 20, Name: "Globex", Address: fake.Ptr("2"), IsActive: false},
	}

	actions := reconciler.PlanClients(ctx, contacts, clients)
	require.Len(t, actions, 1)
	assert.Equal(t, reconciler.KindUpdateClient, actions[0].Kind)
	assert.Equal(t, int64(10), actions[0].TargetID)
	assert.Equal(t, "Acme", *actions[0].ClientPatch.Name)
	assert.Equal(t, "ACME", actions[0].Change.OldValue)
}

func TestPlanClientsIgnoresMalformedAddresses(t *testing.T) {
	logging.DisableLoggingForTest(t)

	contacts := []rentman.Contact{{ID: 0, DisplayName: "Nobody"}}
	clients := []harvest.Client{{ID: 10, Name: "Street", Address: fake.Ptr("Main Street 1")}}

	actions := reconciler.PlanClients(context.Background(), contacts, clients)
	require.Len(t, actions, 1)
	assert.Equal(t, reconciler.KindCreateClient, actions[0].Kind, "a street address never links to contact 0")
}

func TestApplyClientsStopsAtFirstFailure(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()

	contacts := []rentman.Contact{{ID: 1, DisplayName: "A"}, {ID: 2, DisplayName: "B"}, {ID: 3, DisplayName: "C"}}
	target := fake.NewTarget(nil, nil)
	boom := errors.New("boom")
	target.FailOn = func(c fake.Call) error {
		if nc, ok := c.Payload.(harvest.NewClient); ok && nc.Name == "B" {
			return boom
		}
		return nil
	}

	var applied []int64
	obs := reconciler.ObserverFuncs{Applied: func(_ context.Context, a reconciler.Action) {
		applied = append(applied, a.SourceID)
	}}

	created, err := reconciler.ApplyClients(ctx, target, reconciler.PlanClients(ctx, contacts, nil), obs)
	require.Error(t, err)
	assert.True(t, harvesterrors.IsWrite(err))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, created, 1, "the write before the failure stays")
	assert.Equal(t, []int64{1}, applied)
	assert.Len(t, target.Calls(), 1)
}

func TestApplyClientsRejectsProjectActions(t *testing.T) {
	logging.DisableLoggingForTest(t)
	_, err := reconciler.ApplyClients(context.Background(), fake.NewTarget(nil, nil),
		[]reconciler.Action{{Kind: reconciler.KindCreateProject}}, nil)
	assert.True(t, harvesterrors.IsValidationError(err))
}
