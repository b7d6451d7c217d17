package rentman_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/harvestsync/internal/sources/rentman"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
	rentmantypes "github.com/agentstation/harvestsync/pkg/rentman"
)

// pagedServer serves items for path with limit/offset paging.
func pagedServer(t *testing.T, path string, items []map[string]any) *httptest.Server {
	t.Helper()
	return cappedServer(t, path, items, 0)
}

// cappedServer is pagedServer with the requested limit capped at maxLimit
// when maxLimit > 0.
func cappedServer(t *testing.T, path string, items []map[string]any, maxLimit int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if maxLimit > 0 && limit > maxLimit {
			limit = maxLimit
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := min(offset+limit, len(items))
		data := []map[string]any{}
		if offset < len(items) {
			data = items[offset:end]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": data, "itemCount": len(data), "limit": limit, "offset": offset,
		})
	}))
}

func TestContactsPaginates(t *testing.T) {
	logging.DisableLoggingForTest(t)

	items := []map[string]any{}
	for i := 1; i <= 5; i++ {
		items = append(items, map[string]any{"id": i, "displayname": "Contact " + strconv.Itoa(i)})
	}
	srv := pagedServer(t, "/contacts", items)
	defer srv.Close()

	c := rentman.New("token", rentman.WithBaseURL(srv.URL), rentman.WithPageSize(2))
	contacts, err := c.Contacts(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 5)
	assert.Equal(t, rentmantypes.Contact{ID: 5, DisplayName: "Contact 5"}, contacts[4])
}

func TestContactsExactMultipleOfPageSize(t *testing.T) {
	logging.DisableLoggingForTest(t)

	items := []map[string]any{{"id": 1, "displayname": "A"}, {"id": 2, "displayname": "B"}}
	srv := pagedServer(t, "/contacts", items)
	defer srv.Close()

	c := rentman.New("token", rentman.WithBaseURL(srv.URL), rentman.WithPageSize(2))
	contacts, err := c.Contacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestContactsFollowsServerCappedLimit(t *testing.T) {
	logging.DisableLoggingForTest(t)

	items := []map[string]any{}
	for i := 1; i <= 250; i++ {
		items = append(items, map[string]any{"id": i, "displayname": "Contact " + strconv.Itoa(i)})
	}
	srv := cappedServer(t, "/contacts", items, 100)
	defer srv.Close()

	c := rentman.New("token", rentman.WithBaseURL(srv.URL), rentman.WithPageSize(300))
	contacts, err := c.Contacts(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 250)
	assert.Equal(t, int64(250), contacts[249].ID)
}

func TestMaxPagesReportsIncompleteSnapshot(t *testing.T) {
	logging.DisableLoggingForTest(t)

	items := []map[string]any{}
	for i := 1; i <= 10; i++ {
		items = append(items, map[string]any{"id": i, "displayname": "x"})
	}
	srv := pagedServer(t, "/contacts", items)
	defer srv.Close()

	c := rentman.New("token", rentman.WithBaseURL(srv.URL), rentman.WithPageSize(2), rentman.WithMaxPages(3))
	_, err := c.Contacts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsIncomplete(err))
	assert.True(t, errors.IsFetch(err))
}

func TestProjectsDerivesCustomerID(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := pagedServer(t, "/projects", []map[string]any{
		{"id": 1, "name": "Festival  ", "customer": "/contacts/42", "number": 1001},
		{"id": 2, "name": "Walk-in", "customer": nil, "number": 1002},
		{"id": 3, "name": "Odd", "customer": "/contacts/abc", "number": 1003},
	})
	defer srv.Close()

	projects, err := rentman.New("token", rentman.WithBaseURL(srv.URL)).Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)

	assert.Equal(t, "Festival", projects[0].Name)
	assert.Equal(t, int64(42), projects[0].CustomerID)
	assert.Equal(t, int64(1001), projects[0].Number)
	assert.Zero(t, projects[1].CustomerID)
	assert.Zero(t, projects[2].CustomerID, "unparsable customer falls back to 0")
}

func TestSubprojects(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := pagedServer(t, "/subprojects", []map[string]any{
		{"id": 1, "project": "/projects/7", "status": "/statuses/2", "is_template": false},
		{"id": 2, "project": "/projects/7", "status": "/statuses/3", "is_template": true},
	})
	defer srv.Close()

	subprojects, err := rentman.New("token", rentman.WithBaseURL(srv.URL)).Subprojects(context.Background())
	require.NoError(t, err)
	require.Len(t, subprojects, 2)
	assert.Equal(t, int64(7), subprojects[0].ProjectID)
	assert.Equal(t, rentmantypes.StatusCancelled, subprojects[0].Status)
	assert.True(t, subprojects[1].IsTemplate)
}

func TestSubprojectsFailOnBadReferences(t *testing.T) {
	logging.DisableLoggingForTest(t)

	t.Run("project reference", func(t *testing.T) {
		srv := pagedServer(t, "/subprojects", []map[string]any{
			{"id": 1, "project": "/projects/x", "status": "/statuses/2"},
		})
		defer srv.Close()

		_, err := rentman.New("token", rentman.WithBaseURL(srv.URL)).Subprojects(context.Background())
		assert.True(t, errors.IsFetch(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		srv := pagedServer(t, "/subprojects", []map[string]any{
			{"id": 1, "project": "/projects/1", "status": "/statuses/42"},
		})
		defer srv.Close()

		_, err := rentman.New("token", rentman.WithBaseURL(srv.URL)).Subprojects(context.Background())
		assert.True(t, errors.IsFetch(err))
	})
}

func TestAPIErrorIsFetchError(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := rentman.New("token", rentman.WithBaseURL(srv.URL)).Contacts(context.Background())
	var fetchErr *errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "rentman", fetchErr.System)
	assert.Equal(t, "contacts", fetchErr.Resource)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}
