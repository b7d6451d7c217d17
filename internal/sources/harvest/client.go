// Package harvest reads and writes clients and projects through the Harvest v2 API.
package harvest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/harvestsync/internal/transport"
	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/harvest"
	"github.com/agentstation/harvestsync/pkg/logging"
)

const system = "harvest"

// Client talks to one Harvest account.
type Client struct {
	transport *transport.Client
	pageSize  int
	maxPages  int
}

type options struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	pageSize   int
	maxPages   int
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent Harvest asks integrations to send.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithPageSize sets per_page; Harvest caps it at 2000.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithMaxPages caps how many pages a listing may take.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// New creates a Harvest client for accountID authenticated with token.
func New(token, accountID string, opts ...Option) *Client {
	o := &options{
		baseURL:   constants.HarvestBaseURL,
		userAgent: constants.DefaultUserAgent,
		pageSize:  constants.HarvestPageSize,
		maxPages:  constants.MaxPages,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		transport: transport.New(system, o.baseURL, &transport.BearerAuth{}, token,
			transport.WithHTTPClient(o.httpClient),
			transport.WithHeader("Harvest-Account-Id", accountID),
			transport.WithHeader("User-Agent", o.userAgent),
		),
		pageSize: o.pageSize,
		maxPages: o.maxPages,
	}
}

// Pagination is the paging envelope of Harvest list responses.
type Pagination struct {
	PerPage      int  `json:"per_page"`
	TotalPages   int  `json:"total_pages"`
	TotalEntries int  `json:"total_entries"`
	NextPage     *int `json:"next_page"`
	Page         int  `json:"page"`
}

// listResponse decodes a page whose records sit under key.
type listResponse[T any] struct {
	Pagination
	key   string
	items []T
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *listResponse[T]) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &r.Pagination); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw[r.key]; ok {
		return json.Unmarshal(v, &r.items)
	}
	return nil
}

// list walks every page of resource and checks the result against total_entries.
func list[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	logger := logging.FromContext(ctx)
	all := []T{}
	total := 0

	for page := 1; ; {
		if page > c.maxPages {
			return nil, &errors.IncompleteSnapshotError{System: system, Resource: resource, Returned: len(all), Total: total}
		}

		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.pageSize)},
		}
		resp := listResponse[T]{key: resource}
		if err := c.transport.Get(ctx, resource, query, &resp); err != nil {
			return nil, errors.WrapFetch(system, resource, err)
		}
		all = append(all, resp.items...)
		total = resp.TotalEntries
		logger.Trace().Str("resource", resource).Int("page", page).Int("items", len(resp.items)).Msg("Fetched page")

		if resp.NextPage == nil || *resp.NextPage <= page {
			break
		}
		page = *resp.NextPage
	}

	if len(all) < total {
		return nil, &errors.IncompleteSnapshotError{System: system, Resource: resource, Returned: len(all), Total: total}
	}
	logger.Debug().Str("resource", resource).Int("count", len(all)).Msg("Fetched collection")
	return all, nil
}

// Clients returns every client, active or not.
func (c *Client) Clients(ctx context.Context) ([]harvest.Client, error) {
	return list[harvest.Client](ctx, c, "clients")
}

// projectRecord is a project as Harvest returns it, with the client nested.
type projectRecord struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Code     *string `json:"code"`
	IsActive bool    `json:"is_active"`
	Notes    *string `json:"notes"`
	Client   struct {
		ID int64 `json:"id"`
	} `json:"client"`
}

func (r projectRecord) project() harvest.Project {
	return harvest.Project{
		ID:       r.ID,
		Name:     r.Name,
		Code:     r.Code,
		IsActive: r.IsActive,
		Notes:    r.Notes,
		ClientID: r.Client.ID,
	}
}

// Projects returns every project, active or not.
func (c *Client) Projects(ctx context.Context) ([]harvest.Project, error) {
	records, err := list[projectRecord](ctx, c, "projects")
	if err != nil {
		return nil, err
	}
	projects := make([]harvest.Project, len(records))
	for i, r := range records {
		projects[i] = r.project()
	}
	return projects, nil
}

// CreateClient creates a client.
func (c *Client) CreateClient(ctx context.Context, nc harvest.NewClient) (harvest.Client, error) {
	var out harvest.Client
	err := c.transport.Send(ctx, http.MethodPost, c.transport.URL("clients", nil), nc, &out)
	return out, err
}

// UpdateClient patches a client.
func (c *Client) UpdateClient(ctx context.Context, id int64, patch harvest.ClientPatch) error {
	endpoint := c.transport.URL("clients/"+strconv.FormatInt(id, 10), nil)
	return c.transport.Send(ctx, http.MethodPatch, endpoint, patch, nil)
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, np harvest.NewProject) (harvest.Project, error) {
	var out projectRecord
	if err := c.transport.Send(ctx, http.MethodPost, c.transport.URL("projects", nil), np, &out); err != nil {
		return harvest.Project{}, err
	}
	return out.project(), nil
}

// UpdateProject patches a project.
func (c *Client) UpdateProject(ctx context.Context, id int64, patch harvest.ProjectPatch) error {
	endpoint := c.transport.URL("projects/"+strconv.FormatInt(id, 10), nil)
	return c.transport.Send(ctx, http.MethodPatch, endpoint, patch, nil)
}
