package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/harvestsync/pkg/rentman"
)

func sub(projectID int64, status rentman.StatusCode) rentman.Subproject {
	return rentman.Subproject{ProjectID: projectID, Status: status}
}

func TestAggregateOf(t *testing.T) {
	tests := []struct {
		name        string
		subprojects []rentman.Subproject
		active      bool
		mixed       bool
	}{
		{name: "no subprojects", active: true},
		{
			name:        "unanimously cancelled",
			subprojects: []rentman.Subproject{sub(1, rentman.StatusCancelled), sub(1, rentman.StatusCancelled)},
			active:      false,
		},
		{
			name:        "unanimously returned",
			subprojects: []rentman.Subproject{sub(1, rentman.StatusReturned)},
			active:      false,
		},
		{
			name:        "cancelled and confirmed",
			subprojects: []rentman.Subproject{sub(1, rentman.StatusCancelled), sub(1, rentman.StatusConfirmed)},
			active:      true,
			mixed:       true,
		},
		{
			name:        "cancelled and returned disagree",
			subprojects: []rentman.Subproject{sub(1, rentman.StatusCancelled), sub(1, rentman.StatusReturned)},
			active:      true,
			mixed:       true,
		},
		{
			name:        "unanimously confirmed",
			subprojects: []rentman.Subproject{sub(1, rentman.StatusConfirmed), sub(1, rentman.StatusConfirmed)},
			active:      true,
		},
		{
			name:        "other projects are ignored",
			subprojects: []rentman.Subproject{sub(2, rentman.StatusConfirmed), sub(1, rentman.StatusCancelled)},
			active:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := AggregateOf(1, tt.subprojects)
			assert.Equal(t, tt.active, agg.Active)
			assert.Equal(t, tt.mixed, agg.Mixed)
		})
	}
}

func TestAggregateTemplateIsAnyOf(t *testing.T) {
	subs := []rentman.Subproject{
		{ProjectID: 1, Status: rentman.StatusConfirmed, IsTemplate: true},
		{ProjectID: 1, Status: rentman.StatusConfirmed, IsTemplate: false},
	}
	assert.True(t, AggregateOf(1, subs).IsTemplate, "order must not matter")

	subs[0].IsTemplate, subs[1].IsTemplate = false, true
	assert.True(t, AggregateOf(1, subs).IsTemplate)
}

func TestAggregateAll(t *testing.T) {
	aggs := AggregateAll([]rentman.Subproject{
		sub(1, rentman.StatusCancelled),
		sub(2, rentman.StatusConfirmed),
		sub(1, rentman.StatusCancelled),
	})

	assert.Len(t, aggs, 2)
	assert.False(t, aggs.For(1).Active)
	assert.Equal(t, 2, aggs.For(1).Subprojects)
	assert.True(t, aggs.For(2).Active)

	missing := aggs.For(99)
	assert.True(t, missing.Active)
	assert.Equal(t, int64(99), missing.ProjectID)
	assert.Zero(t, missing.Subprojects)
}
