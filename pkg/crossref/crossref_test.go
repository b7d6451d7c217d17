package crossref_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/harvestsync/pkg/crossref"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
)

func ptr(s string) *string { return &s }

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		field *string
		state crossref.State
		value int64
	}{
		{name: "nil", field: nil, state: crossref.Absent},
		{name: "empty", field: ptr(""), state: crossref.Absent},
		{name: "blank", field: ptr("   "), state: crossref.Absent},
		{name: "numeric", field: ptr("42"), state: crossref.Present, value: 42},
		{name: "padded", field: ptr(" 42\n"), state: crossref.Present, value: 42},
		{name: "zero", field: ptr("0"), state: crossref.Present, value: 0},
		{name: "street address", field: ptr("Dorpsstraat 1"), state: crossref.Malformed},
		{name: "float", field: ptr("4.2"), state: crossref.Malformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := crossref.Parse(tt.field)
			assert.Equal(t, tt.state, id.State())
			v, ok := id.Value()
			assert.Equal(t, tt.state == crossref.Present, ok)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, crossref.Parse(ptr("42")).Matches(42))
	assert.False(t, crossref.Parse(ptr("42")).Matches(43))
	assert.False(t, crossref.Parse(nil).Matches(0))
	assert.False(t, crossref.Parse(ptr("garbage")).Matches(0), "malformed field must not match the zero id")
	assert.True(t, crossref.Of(7).Matches(7))
}

func TestString(t *testing.T) {
	assert.Equal(t, "42", crossref.Parse(ptr("42")).String())
	assert.Equal(t, "absent", crossref.Parse(nil).String())
	assert.Equal(t, "malformed(n/a)", crossref.Parse(ptr("n/a")).String())
	assert.Equal(t, "present", crossref.Present.String())
	assert.Equal(t, "42", crossref.Format(42))
}

func TestFromURI(t *testing.T) {
	id, err := crossref.FromURI("/contacts/42", "/contacts/")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = crossref.FromURI("/projects/42", "/contacts/")
	assert.Error(t, err)

	_, err = crossref.FromURI("/contacts/abc", "/contacts/")
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

type client struct {
	id      int64
	address *string
}

func TestFind(t *testing.T) {
	logging.DisableLoggingForTest(t)

	clients := []client{
		{id: 1, address: nil},
		{id: 2, address: ptr("not a number")},
		{id: 3, address: ptr("42")},
		{id: 4, address: ptr("42")},
	}
	address := func(c client) *string { return c.address }

	found, ok := crossref.Find(context.Background(), clients, address, 42)
	require.True(t, ok)
	assert.Equal(t, int64(3), found.id, "first match in iteration order wins")

	_, ok = crossref.Find(context.Background(), clients, address, 0)
	assert.False(t, ok)

	_, ok = crossref.Find(context.Background(), []client{}, address, 42)
	assert.False(t, ok)
}

func TestFindLogsDiagnostics(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, ok := crossref.Find(ctx, []*string{nil, ptr("x")}, func(s *string) *string { return s }, 5)
	assert.False(t, ok)
	tl.AssertContains(t, "no cross-reference present")
	tl.AssertContains(t, "malformed cross-reference")
}

func TestFindLogsOncePerScan(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	self := func(s *string) *string { return s }

	_, ok := crossref.Find(ctx, []*string{nil, ptr(""), nil, ptr("  ")}, self, 5)
	assert.False(t, ok)
	require.Equal(t, 1, tl.Count(), tl.Output())
	tl.AssertContains(t, `"absent":4`)

	tl.Clear()
	_, ok = crossref.Find(ctx, []*string{nil, ptr("x"), ptr("5")}, self, 5)
	assert.True(t, ok)
	assert.Zero(t, tl.Count(), "a match logs nothing")
}
