// Package rentman reads contacts, projects and subprojects from the Rentman API.
package rentman

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/harvestsync/internal/transport"
	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/crossref"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
	"github.com/agentstation/harvestsync/pkg/rentman"
)

const system = "rentman"

// Client reads Rentman snapshots.
type Client struct {
	transport *transport.Client
	pageSize  int
	maxPages  int
}

type options struct {
	baseURL    string
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

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithPageSize sets the number of records requested per page.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithMaxPages caps how many pages a listing may take before it is
// reported as incomplete.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// New creates a Rentman client authenticated with a bearer token.
func New(token string, opts ...Option) *Client {
	o := &options{
		baseURL:  constants.RentmanBaseURL,
		pageSize: constants.RentmanPageSize,
		maxPages: constants.MaxPages,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		transport: transport.New(system, o.baseURL, &transport.BearerAuth{}, token,
			transport.WithHTTPClient(o.httpClient)),
		pageSize: o.pageSize,
		maxPages: o.maxPages,
	}
}

// page is one response of a Rentman collection endpoint.
type page[T any] struct {
	Data      []T `json:"data"`
	ItemCount int `json:"itemCount"`
	Limit     int `json:"limit"`
	Offset    int `json:"offset"`
}

// list walks a collection with limit/offset until a page comes back shorter
// than the limit the server applied, or empty.
func list[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	logger := logging.FromContext(ctx)
	all := []T{}
	offset := 0

	for n := 0; ; n++ {
		if n >= c.maxPages {
			return nil, &errors.IncompleteSnapshotError{System: system, Resource: resource, Returned: len(all)}
		}

		query := url.Values{
			"limit":  {strconv.Itoa(c.pageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		var p page[T]
		if err := c.transport.Get(ctx, resource, query, &p); err != nil {
			return nil, errors.WrapFetch(system, resource, err)
		}

		count := p.ItemCount
		if count == 0 {
			count = len(p.Data)
		}
		all = append(all, p.Data...)
		logger.Trace().Str("resource", resource).Int("offset", offset).Int("items", count).Msg("Fetched page")

		// the server may cap the requested limit; a full page is judged
		// against the limit it reports
		limit := p.Limit
		if limit <= 0 {
			limit = c.pageSize
		}
		if count == 0 || count < limit {
			break
		}
		offset += count
	}

	logger.Debug().Str("resource", resource).Int("count", len(all)).Msg("Fetched collection")
	return all, nil
}

// Contacts returns every contact.
func (c *Client) Contacts(ctx context.Context) ([]rentman.Contact, error) {
	return list[rentman.Contact](ctx, c, "contacts")
}

// Projects returns every project with CustomerID derived from its customer
// reference and trailing whitespace removed from the name.
func (c *Client) Projects(ctx context.Context) ([]rentman.Project, error) {
	projects, err := list[rentman.Project](ctx, c, "projects")
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)
	for i := range projects {
		p := &projects[i]
		p.Name = strings.TrimRight(p.Name, " \t\r\n")
		if p.CustomerRef == nil || strings.TrimSpace(*p.CustomerRef) == "" {
			continue
		}
		id, err := crossref.FromURI(*p.CustomerRef, rentman.ContactPrefix)
		if err != nil {
			logger.Warn().Err(err).Int64("project_id", p.ID).Msg("Unparsable customer reference, using fallback client")
			continue
		}
		p.CustomerID = id
	}
	return projects, nil
}

// Subprojects returns every subproject with ProjectID derived from its
// project reference. An unparsable reference fails the fetch.
func (c *Client) Subprojects(ctx context.Context) ([]rentman.Subproject, error) {
	subprojects, err := list[rentman.Subproject](ctx, c, "subprojects")
	if err != nil {
		return nil, err
	}
	for i := range subprojects {
		sp := &subprojects[i]
		id, err := crossref.FromURI(sp.ProjectRef, rentman.ProjectPrefix)
		if err != nil {
			return nil, errors.NewFetchError(system, "subprojects", err)
		}
		sp.ProjectID = id
	}
	return subprojects, nil
}
