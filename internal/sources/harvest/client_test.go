package harvest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/harvestsync/internal/sources/harvest"
	"github.com/agentstation/harvestsync/pkg/errors"
	harvesttypes "github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/logging"
)

func checkHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
	assert.Equal(t, "12345", r.Header.Get("Harvest-Account-Id"))
	assert.Equal(t, "harvestsync-test (ops@example.com)", r.Header.Get("User-Agent"))
}

// pagedServer serves items under key with page/per_page paging. lie inflates total_entries.
func pagedServer(t *testing.T, key string, items []map[string]any, lie int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkHeaders(t, r)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		start := (page - 1) * perPage
		end := min(start+perPage, len(items))
		data := []map[string]any{}
		if start < len(items) {
			data = items[start:end]
		}
		totalPages := (len(items) + perPage - 1) / perPage
		var next any
		if page < totalPages {
			next = page + 1
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			key:             data,
			"per_page":      perPage,
			"total_pages":   totalPages,
			"total_entries": len(items) + lie,
			"next_page":     next,
			"page":          page,
		})
	}))
}

func newClient(url string, opts ...harvest.Option) *harvest.Client {
	opts = append([]harvest.Option{
		harvest.WithBaseURL(url),
		harvest.WithUserAgent("harvestsync-test (ops@example.com)"),
	}, opts...)
	return harvest.New("token", "12345", opts...)
}

func TestClientsPaginates(t *testing.T) {
	logging.DisableLoggingForTest(t)

	items := []map[string]any{}
	for i := 1; i <= 5; i++ {
		items = append(items, map[string]any{"id": i, "name": "C" + strconv.Itoa(i), "is_active": true, "address": strconv.Itoa(i * 10)})
	}
	srv := pagedServer(t, "clients", items, 0)
	defer srv.Close()

	clients, err := newClient(srv.URL, harvest.WithPageSize(2)).Clients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 5)
	assert.Equal(t, "50", *clients[4].Address)
}

func TestClientsIncompleteSnapshot(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := pagedServer(t, "clients", []map[string]any{{"id": 1, "name": "A"}}, 3)
	defer srv.Close()

	_, err := newClient(srv.URL).Clients(context.Background())
	var incomplete *errors.IncompleteSnapshotError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 1, incomplete.Returned)
	assert.Equal(t, 4, incomplete.Total)
	assert.True(t, errors.IsFetch(err))
}

func TestClientsMaxPages(t *testing.T) {
	logging.DisableLoggingForTest(t)

	items := []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}}
	srv := pagedServer(t, "clients", items, 0)
	defer srv.Close()

	_, err := newClient(srv.URL, harvest.WithPageSize(1), harvest.WithMaxPages(2)).Clients(context.Background())
	assert.True(t, errors.IsIncomplete(err))
}

func TestProjectsFlattenClient(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := pagedServer(t, "projects", []map[string]any{
		{"id": 100, "name": "Festival", "code": "1001", "is_active": true, "notes": "7", "client": map[string]any{"id": 10, "name": "Acme"}},
		{"id": 101, "name": "Bare", "code": nil, "is_active": false, "notes": nil, "client": map[string]any{"id": 11}},
	}, 0)
	defer srv.Close()

	projects, err := newClient(srv.URL).Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, int64(10), projects[0].ClientID)
	assert.Equal(t, "7", *projects[0].Notes)
	assert.Nil(t, projects[1].Code)
	assert.Nil(t, projects[1].Notes)
	assert.False(t, projects[1].IsActive)
}

func TestWrites(t *testing.T) {
	logging.DisableLoggingForTest(t)

	type request struct {
		method, path string
		body         map[string]any
	}
	var got []request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkHeaders(t, r)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		got = append(got, request{r.Method, r.URL.Path, body})

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/clients":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":55,"name":"Acme","is_active":true,"address":"42"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/projects":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":77,"name":"Festival","code":"1001","is_active":true,"notes":"7","client":{"id":55}}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL)
	ctx := context.Background()

	client, err := c.CreateClient(ctx, harvesttypes.NewClient{Name: "Acme", Address: "42"})
	require.NoError(t, err)
	assert.Equal(t, int64(55), client.ID)

	name := "Acme B.V."
	require.NoError(t, c.UpdateClient(ctx, 55, harvesttypes.ClientPatch{Name: &name}))

	project, err := c.CreateProject(ctx, harvesttypes.NewProject{
		ClientID: 55, Name: "Festival", Code: "1001", Notes: "7", IsActive: true,
		IsBillable: true, BillBy: harvesttypes.BillByNone, BudgetBy: harvesttypes.BudgetByNone,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), project.ClientID)

	active := false
	require.NoError(t, c.UpdateProject(ctx, 77, harvesttypes.ProjectPatch{IsActive: &active}))

	require.Len(t, got, 4)
	assert.Equal(t, "Acme B.V.", got[1].body["name"])
	assert.Equal(t, http.MethodPatch, got[1].method)
	assert.Equal(t, "/clients/55", got[1].path)
	assert.Equal(t, "none", got[2].body["bill_by"])
	assert.Equal(t, true, got[2].body["is_billable"])
	assert.Equal(t, map[string]any{"is_active": false}, got[3].body, "patch only carries the changed field")
}

func TestWriteErrorsSurface(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Name has already been taken"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).CreateClient(context.Background(), harvesttypes.NewClient{Name: "Dup", Address: "1"})
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}
